package cube

import (
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

// Cube is a FITS image cube loaded into memory: the flattened pixel data in
// FITS (Fortran) order together with the axis lengths and the header cards
// needed to interpret and re-write it.
//
// Axes follows the FITS convention: Axes[0] is NAXIS1, the fastest-varying
// axis of the flattened data.
type Cube struct {
	Data []float32
	Axes []int

	cards []fitsio.Card
}

// Card is a simplified header card used to synthesise cubes in memory
// (tests, channel grids built from scratch).
type Card struct {
	Name  string
	Value interface{}
}

func (c Card) fits() fitsio.Card {
	return fitsio.Card{Name: c.Name, Value: c.Value}
}

// structural header keys owned by the FITS writer; never copied between files.
var structuralKeys = map[string]bool{
	"SIMPLE":   true,
	"XTENSION": true,
	"BITPIX":   true,
	"NAXIS":    true,
	"EXTEND":   true,
	"PCOUNT":   true,
	"GCOUNT":   true,
	"END":      true,
}

// Read loads the primary HDU of the FITS file at path. Pixel data is
// converted to float32; BITPIX -32 and -64 are supported.
func Read(path string) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cube: open %s: %w", path, err)
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, fmt.Errorf("cube: %s: %w", path, err)
	}
	defer fits.Close()

	img, ok := fits.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("cube: %s: primary HDU is not an image", path)
	}
	hdr := img.Header()

	axes := append([]int(nil), hdr.Axes()...)
	n := 1
	for _, ax := range axes {
		if ax <= 0 {
			return nil, fmt.Errorf("cube: %s: bad axis length %d", path, ax)
		}
		n *= ax
	}
	if len(axes) == 0 {
		return nil, fmt.Errorf("cube: %s: primary HDU has no data", path)
	}

	c := &Cube{Axes: axes}
	switch bitpix := hdr.Bitpix(); bitpix {
	case -32:
		c.Data = make([]float32, n)
		if err := img.Read(&c.Data); err != nil {
			return nil, fmt.Errorf("cube: %s: read data: %w", path, err)
		}
	case -64:
		buf := make([]float64, n)
		if err := img.Read(&buf); err != nil {
			return nil, fmt.Errorf("cube: %s: read data: %w", path, err)
		}
		c.Data = make([]float32, n)
		for i, v := range buf {
			c.Data[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("cube: %s: unsupported BITPIX %d (want -32 or -64)", path, bitpix)
	}

	for _, key := range hdr.Keys() {
		if structuralKeys[key] || strings.HasPrefix(key, "NAXIS") {
			continue
		}
		if card := hdr.Get(key); card != nil {
			c.cards = append(c.cards, *card)
		}
	}
	return c, nil
}

// Write stores the cube at path as a BITPIX -32 primary HDU, carrying over
// the non-structural header cards plus one HISTORY card per history entry.
// Unless overwrite is set, an existing file is an error.
func Write(path string, c *Cube, history []string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("cube: %s already exists (use overwrite)", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cube: create %s: %w", path, err)
	}
	defer f.Close()

	fits, err := fitsio.Create(f)
	if err != nil {
		return fmt.Errorf("cube: %s: %w", path, err)
	}
	defer fits.Close()

	img := fitsio.NewImage(-32, c.Axes)
	defer img.Close()

	cards := append([]fitsio.Card(nil), c.cards...)
	for _, h := range history {
		cards = append(cards, fitsio.Card{Name: "HISTORY", Value: h})
	}
	if err := img.Header().Append(cards...); err != nil {
		return fmt.Errorf("cube: %s: write header: %w", path, err)
	}

	if err := img.Write(&c.Data); err != nil {
		return fmt.Errorf("cube: %s: write data: %w", path, err)
	}
	if err := fits.Write(img); err != nil {
		return fmt.Errorf("cube: %s: write hdu: %w", path, err)
	}
	return nil
}

// WithData returns a cube sharing this cube's axes and header cards but
// holding different pixel data. Used to write a corrected plane under the
// reference header.
func (c *Cube) WithData(data []float32) *Cube {
	return &Cube{Data: data, Axes: c.Axes, cards: c.cards}
}

// SameShape reports whether the two cubes have identical axis lengths.
func (c *Cube) SameShape(o *Cube) bool {
	if len(c.Axes) != len(o.Axes) {
		return false
	}
	for i, ax := range c.Axes {
		if o.Axes[i] != ax {
			return false
		}
	}
	return true
}

// card returns the value of the named header card.
func (c *Cube) card(name string) (interface{}, bool) {
	for _, cd := range c.cards {
		if cd.Name == name {
			return cd.Value, true
		}
	}
	return nil, false
}

// cardFloat returns the named card as a float64, converting integer cards.
func (c *Cube) cardFloat(name string) (float64, bool) {
	v, ok := c.card(name)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
