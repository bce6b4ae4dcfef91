package predict

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/cirada-tools/frion/internal/ionosphere"
)

// speedOfLight in m/s.
const speedOfLight = 299792458.0

// Prediction is the time-integrated ionospheric modulation for one
// observation: a complex factor Θ per frequency channel, plus the metadata
// needed to label the prediction file.
type Prediction struct {
	// FreqsHz are the channel centre frequencies.
	FreqsHz []float64

	// Theta is the per-channel modulation Θ(ν) = (1/T) ∫ exp(2i λ² RM(t)) dt.
	// Dividing the complex polarization by Θ removes both the net rotation
	// and the time-averaging depolarization.
	Theta []complex128

	// Observation metadata, written as comments in the prediction file.
	Start time.Time
	End   time.Time
	RA    float64
	Dec   float64
}

// Channels returns n uniformly spaced channel centres between minHz and
// maxHz inclusive. n == 1 returns {minHz}.
func Channels(minHz, maxHz float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("predict: channel count %d must be >= 1", n)
	}
	if minHz <= 0 {
		return nil, fmt.Errorf("predict: freq_min %v Hz must be positive", minHz)
	}
	if maxHz < minHz {
		return nil, fmt.Errorf("predict: freq_max %v Hz below freq_min %v Hz", maxHz, minHz)
	}
	if n == 1 {
		return []float64{minHz}, nil
	}
	return floats.Span(make([]float64, n), minHz, maxHz), nil
}

// Integrate reduces the RM time series to the per-channel modulation Θ(ν)
// using the trapezoidal rule over the unit phasors exp(2i λ² RM(t)).
//
// |Θ| <= 1 always: averaging unit phasors can only shrink the magnitude.
// A constant RM gives |Θ| = 1 and arg Θ = 2 λ² RM; a varying RM additionally
// encodes the depolarization the ionosphere imposed over the observation.
//
// A single-sample series degenerates to Θ = exp(2i λ² RM) exactly.
func Integrate(series ionosphere.Series, freqsHz []float64) (*Prediction, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if len(freqsHz) == 0 {
		return nil, fmt.Errorf("predict: no frequency channels")
	}
	for i, f := range freqsHz {
		if f <= 0 {
			return nil, fmt.Errorf("predict: channel %d frequency %v Hz must be positive", i, f)
		}
	}

	p := &Prediction{
		FreqsHz: append([]float64(nil), freqsHz...),
		Theta:   make([]complex128, len(freqsHz)),
		Start:   series[0].Time,
		End:     series[len(series)-1].Time,
	}

	if len(series) == 1 {
		for c, f := range freqsHz {
			p.Theta[c] = cmplx.Exp(complex(0, 2*lambdaSq(f)*series[0].RM))
		}
		return p, nil
	}

	// Seconds since the first sample; the integration variable.
	ts := make([]float64, len(series))
	for i, smp := range series {
		ts[i] = smp.Time.Sub(series[0].Time).Seconds()
	}
	span := ts[len(ts)-1]

	re := make([]float64, len(series))
	im := make([]float64, len(series))
	for c, f := range freqsHz {
		twoLambdaSq := 2 * lambdaSq(f)
		for i, smp := range series {
			phase := twoLambdaSq * smp.RM
			re[i] = math.Cos(phase)
			im[i] = math.Sin(phase)
		}
		p.Theta[c] = complex(
			integrate.Trapezoidal(ts, re)/span,
			integrate.Trapezoidal(ts, im)/span,
		)
	}
	return p, nil
}

// MeanRM is the time-averaged rotation measure (1/T) ∫ RM dt — the scalar
// "time-independent correction" in its simplest form. A single-sample series
// returns that sample's RM.
func MeanRM(series ionosphere.Series) (float64, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if len(series) == 1 {
		return series[0].RM, nil
	}
	ts := make([]float64, len(series))
	rm := make([]float64, len(series))
	for i, smp := range series {
		ts[i] = smp.Time.Sub(series[0].Time).Seconds()
		rm[i] = smp.RM
	}
	return integrate.Trapezoidal(ts, rm) / ts[len(ts)-1], nil
}

// Depolarization returns |Θ| per channel: the fraction of polarized signal
// surviving the time-varying ionospheric rotation. Correcting a channel with
// small |Θ| amplifies its noise by 1/|Θ|.
func (p *Prediction) Depolarization() []float64 {
	out := make([]float64, len(p.Theta))
	for i, th := range p.Theta {
		out[i] = cmplx.Abs(th)
	}
	return out
}

// PolAngleRotation returns the net polarization-angle rotation arg(Θ)/2 per
// channel, in radians.
func (p *Prediction) PolAngleRotation() []float64 {
	out := make([]float64, len(p.Theta))
	for i, th := range p.Theta {
		out[i] = cmplx.Phase(th) / 2
	}
	return out
}

// lambdaSq is the squared wavelength in m² for a frequency in Hz.
func lambdaSq(freqHz float64) float64 {
	l := speedOfLight / freqHz
	return l * l
}
