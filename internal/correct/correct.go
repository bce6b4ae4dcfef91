package correct

import (
	"fmt"
	"math/cmplx"
)

// minModulation is the smallest |Θ| a channel may carry. Below this the
// observation is effectively fully depolarized and dividing by Θ would
// only amplify noise into garbage.
const minModulation = 1e-6

// Apply divides the complex polarization Q+iU by the per-channel modulation
// theta, in place. chanOf maps a flat data index to its channel (see
// cube.ChannelIndex). Correcting derotates the polarization angle and
// renormalises away the time-averaging depolarization; channels with small
// |Θ| get their noise amplified by 1/|Θ|.
func Apply(q, u []float32, chanOf func(int) int, theta []complex128) error {
	if len(q) != len(u) {
		return fmt.Errorf("correct: Q and U lengths differ (%d vs %d)", len(q), len(u))
	}
	inv := make([]complex128, len(theta))
	for c, th := range theta {
		if cmplx.Abs(th) < minModulation {
			return fmt.Errorf("correct: channel %d modulation |Θ|=%g too small to invert", c, cmplx.Abs(th))
		}
		inv[c] = 1 / th
	}
	for k := range q {
		c := chanOf(k)
		if c < 0 || c >= len(inv) {
			return fmt.Errorf("correct: data index %d maps to channel %d outside prediction (%d channels)", k, c, len(inv))
		}
		p := complex(float64(q[k]), float64(u[k])) * inv[c]
		q[k] = float32(real(p))
		u[k] = float32(imag(p))
	}
	return nil
}
