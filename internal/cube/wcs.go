package cube

import (
	"fmt"
	"strings"
)

// FreqAxis returns the 1-based FITS axis number whose CTYPE contains "FREQ",
// or 0 when no frequency axis can be identified. Different archives spell
// the type differently (FREQ, OBSFREQ, Frequency), so any CTYPE containing
// the substring matches, case-insensitively.
func (c *Cube) FreqAxis() int {
	axis := 0
	for i := 1; i <= len(c.Axes); i++ {
		v, ok := c.card(fmt.Sprintf("CTYPE%d", i))
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToUpper(s), "FREQ") {
			axis = i
		}
	}
	return axis
}

// NChan returns the number of channels along the frequency axis, or 0 when
// the cube has none.
func (c *Cube) NChan() int {
	axis := c.FreqAxis()
	if axis == 0 {
		return 0
	}
	return c.Axes[axis-1]
}

// FreqCenters computes the channel centre frequencies from the linear WCS
// cards (CRVALi, CDELTi, CRPIXi) of the frequency axis.
func (c *Cube) FreqCenters() ([]float64, error) {
	axis := c.FreqAxis()
	if axis == 0 {
		return nil, fmt.Errorf("cube: no frequency axis in header")
	}
	crval, ok := c.cardFloat(fmt.Sprintf("CRVAL%d", axis))
	if !ok {
		return nil, fmt.Errorf("cube: missing CRVAL%d", axis)
	}
	cdelt, ok := c.cardFloat(fmt.Sprintf("CDELT%d", axis))
	if !ok {
		return nil, fmt.Errorf("cube: missing CDELT%d", axis)
	}
	crpix, ok := c.cardFloat(fmt.Sprintf("CRPIX%d", axis))
	if !ok {
		crpix = 1
	}

	n := c.Axes[axis-1]
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		// FITS pixel indices are 1-based.
		out[k] = crval + (float64(k+1)-crpix)*cdelt
	}
	return out, nil
}

// ChannelIndex returns a function mapping a flat data index to its channel
// along the frequency axis. With Fortran-ordered data the channel of element
// k is (k / stride) mod nchan, where stride is the product of the axis
// lengths before the frequency axis, so no array reshuffling is needed to
// apply a per-channel correction.
func (c *Cube) ChannelIndex() (func(int) int, error) {
	axis := c.FreqAxis()
	if axis == 0 {
		return nil, fmt.Errorf("cube: no frequency axis in header")
	}
	stride := 1
	for i := 0; i < axis-1; i++ {
		stride *= c.Axes[i]
	}
	nchan := c.Axes[axis-1]
	return func(k int) int {
		return (k / stride) % nchan
	}, nil
}

// SetCards replaces the non-structural header cards. Intended for tests and
// for synthesising cubes in memory.
func (c *Cube) SetCards(cards []Card) {
	c.cards = c.cards[:0]
	for _, cd := range cards {
		c.cards = append(c.cards, cd.fits())
	}
}
