package correct

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cirada-tools/frion/internal/cube"
	"github.com/cirada-tools/frion/internal/predict"
)

// freqTolerance is the maximum difference allowed between a cube channel
// frequency and the matching prediction channel, in Hz.
const freqTolerance = 1.0

// historyNote is appended to the header of every corrected cube.
const historyNote = "Corrected for ionospheric Faraday rotation with frion."

// Options names all the file paths for one correction run.
type Options struct {
	QIn        string
	UIn        string
	Prediction string
	QOut       string
	UOut       string
	Overwrite  bool
}

// ApplyToFiles runs the whole correction path: read the prediction, open the
// Stokes Q and U cubes, check that the three agree, apply the correction and
// write the corrected cubes. The U cube's header is not carried into the
// outputs; both corrected cubes inherit the Q header, matching how the cubes
// are produced in the first place.
func ApplyToFiles(ctx context.Context, opts Options) error {
	pred, err := predict.ReadFile(opts.Prediction)
	if err != nil {
		return err
	}

	qc, err := cube.Read(opts.QIn)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	uc, err := cube.Read(opts.UIn)
	if err != nil {
		return err
	}

	if !qc.SameShape(uc) {
		return fmt.Errorf("correct: Q %v and U %v cubes have different dimensions", qc.Axes, uc.Axes)
	}
	if err := checkFrequencies(qc, pred); err != nil {
		return err
	}

	chanOf, err := qc.ChannelIndex()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Apply(qc.Data, uc.Data, chanOf, pred.Theta); err != nil {
		return err
	}

	slog.Info("correction applied",
		"channels", len(pred.Theta),
		"pixels", len(qc.Data),
	)

	history := []string{historyNote}
	if err := cube.Write(opts.QOut, qc, history, opts.Overwrite); err != nil {
		return err
	}
	// The corrected U plane is written under the Q header too.
	if err := cube.Write(opts.UOut, qc.WithData(uc.Data), history, opts.Overwrite); err != nil {
		return err
	}
	return nil
}

// checkFrequencies verifies the cube and the prediction describe the same
// channel grid: equal channel counts and, when the cube carries a usable
// frequency axis WCS, per-channel agreement within freqTolerance.
func checkFrequencies(c *cube.Cube, pred *predict.Prediction) error {
	nchan := c.NChan()
	if nchan == 0 {
		return fmt.Errorf("correct: cube has no frequency axis")
	}
	if nchan != len(pred.Theta) {
		return fmt.Errorf("correct: cube has %d channels, prediction has %d", nchan, len(pred.Theta))
	}

	freqs, err := c.FreqCenters()
	if err != nil {
		// Axis present but WCS incomplete; counts matched, carry on.
		slog.Warn("correct: cube frequency WCS incomplete, skipping frequency check", "err", err)
		return nil
	}
	for i, f := range freqs {
		if math.Abs(f-pred.FreqsHz[i]) > freqTolerance {
			return fmt.Errorf("correct: channel %d frequency mismatch: cube %.3f Hz, prediction %.3f Hz",
				i, f, pred.FreqsHz[i])
		}
	}
	return nil
}
