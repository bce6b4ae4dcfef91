package predict

import (
	"math"
	"math/cmplx"
	"testing"
	"time"

	"github.com/cirada-tools/frion/internal/ionosphere"
)

var t0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

// constantSeries returns n samples over span, all with the same RM.
func constantSeries(n int, span time.Duration, rm float64) ionosphere.Series {
	s := make(ionosphere.Series, n)
	for i := range s {
		s[i] = ionosphere.Sample{
			Time: t0.Add(time.Duration(i) * span / time.Duration(n-1)),
			RM:   rm,
		}
	}
	return s
}

// rampSeries returns n samples over span with RM rising linearly from lo to hi.
func rampSeries(n int, span time.Duration, lo, hi float64) ionosphere.Series {
	s := make(ionosphere.Series, n)
	for i := range s {
		frac := float64(i) / float64(n-1)
		s[i] = ionosphere.Sample{
			Time: t0.Add(time.Duration(frac * float64(span))),
			RM:   lo + frac*(hi-lo),
		}
	}
	return s
}

func TestIntegrate_ConstantRM(t *testing.T) {
	const rm = 2.0
	series := constantSeries(13, 30*time.Minute, rm)
	freqs := []float64{150e6, 700e6, 1.4e9}

	p, err := Integrate(series, freqs)
	if err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}

	for c, f := range freqs {
		lambda := speedOfLight / f
		want := cmplx.Exp(complex(0, 2*lambda*lambda*rm))

		if got := cmplx.Abs(p.Theta[c]); math.Abs(got-1) > 1e-12 {
			t.Errorf("channel %d: |Θ| = %v, want 1 (constant RM cannot depolarize)", c, got)
		}
		if d := cmplx.Abs(p.Theta[c] - want); d > 1e-9 {
			t.Errorf("channel %d: Θ = %v, want %v (Δ=%g)", c, p.Theta[c], want, d)
		}
	}
}

func TestIntegrate_SymmetricRamp(t *testing.T) {
	// RM sweeping linearly from -a to +a averages the phasor to the real
	// value sin(x)/x with x = 2λ²a.
	const a = 0.5
	const freq = 150e6
	series := rampSeries(4001, time.Hour, -a, a)

	p, err := Integrate(series, []float64{freq})
	if err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}

	lambda := speedOfLight / freq
	x := 2 * lambda * lambda * a
	want := math.Sin(x) / x

	if got := real(p.Theta[0]); math.Abs(got-want) > 1e-4 {
		t.Errorf("Re Θ = %v, want sin(x)/x = %v", got, want)
	}
	if got := imag(p.Theta[0]); math.Abs(got) > 1e-4 {
		t.Errorf("Im Θ = %v, want ~0 for a symmetric ramp", got)
	}
	if got := p.Depolarization()[0]; got > 1+1e-12 {
		t.Errorf("|Θ| = %v > 1", got)
	}
}

func TestIntegrate_SingleSample(t *testing.T) {
	const rm = -1.3
	const freq = 944e6
	series := ionosphere.Series{{Time: t0, RM: rm}}

	p, err := Integrate(series, []float64{freq})
	if err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}

	lambda := speedOfLight / freq
	want := cmplx.Exp(complex(0, 2*lambda*lambda*rm))
	if d := cmplx.Abs(p.Theta[0] - want); d > 1e-12 {
		t.Errorf("Θ = %v, want exp(2iλ²RM) = %v", p.Theta[0], want)
	}
}

func TestIntegrate_Errors(t *testing.T) {
	good := constantSeries(3, time.Minute, 1)

	tests := []struct {
		name   string
		series ionosphere.Series
		freqs  []float64
	}{
		{"empty series", nil, []float64{150e6}},
		{"no channels", good, nil},
		{"negative frequency", good, []float64{-1}},
		{
			"non-increasing times",
			ionosphere.Series{{Time: t0, RM: 1}, {Time: t0, RM: 2}},
			[]float64{150e6},
		},
		{
			"NaN RM",
			ionosphere.Series{{Time: t0, RM: math.NaN()}},
			[]float64{150e6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Integrate(tt.series, tt.freqs); err == nil {
				t.Error("Integrate() expected error, got nil")
			}
		})
	}
}

func TestMeanRM(t *testing.T) {
	t.Run("constant", func(t *testing.T) {
		got, err := MeanRM(constantSeries(7, time.Hour, 3.25))
		if err != nil {
			t.Fatalf("MeanRM() error = %v", err)
		}
		if math.Abs(got-3.25) > 1e-12 {
			t.Errorf("MeanRM = %v, want 3.25", got)
		}
	})

	t.Run("symmetric ramp averages to midpoint", func(t *testing.T) {
		got, err := MeanRM(rampSeries(101, time.Hour, -2, 2))
		if err != nil {
			t.Fatalf("MeanRM() error = %v", err)
		}
		if math.Abs(got) > 1e-9 {
			t.Errorf("MeanRM = %v, want 0", got)
		}
	})

	t.Run("single sample", func(t *testing.T) {
		got, err := MeanRM(ionosphere.Series{{Time: t0, RM: 1.5}})
		if err != nil {
			t.Fatalf("MeanRM() error = %v", err)
		}
		if got != 1.5 {
			t.Errorf("MeanRM = %v, want 1.5", got)
		}
	})
}

func TestPolAngleRotation(t *testing.T) {
	const rm = 0.01 // small RM keeps 2λ²RM inside (-π, π] at this frequency
	const freq = 1.4e9
	series := constantSeries(5, time.Minute, rm)

	p, err := Integrate(series, []float64{freq})
	if err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}

	lambda := speedOfLight / freq
	want := lambda * lambda * rm
	if got := p.PolAngleRotation()[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("PolAngleRotation = %v, want λ²RM = %v", got, want)
	}
}

func TestChannels(t *testing.T) {
	t.Run("uniform grid", func(t *testing.T) {
		got, err := Channels(100e6, 200e6, 5)
		if err != nil {
			t.Fatalf("Channels() error = %v", err)
		}
		want := []float64{100e6, 125e6, 150e6, 175e6, 200e6}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-3 {
				t.Errorf("channel %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("single channel", func(t *testing.T) {
		got, err := Channels(150e6, 150e6, 1)
		if err != nil {
			t.Fatalf("Channels() error = %v", err)
		}
		if len(got) != 1 || got[0] != 150e6 {
			t.Errorf("Channels = %v, want [1.5e8]", got)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := Channels(200e6, 100e6, 4); err == nil {
			t.Error("inverted range: expected error")
		}
		if _, err := Channels(100e6, 200e6, 0); err == nil {
			t.Error("zero channels: expected error")
		}
		if _, err := Channels(0, 200e6, 4); err == nil {
			t.Error("zero freq_min: expected error")
		}
	})
}
