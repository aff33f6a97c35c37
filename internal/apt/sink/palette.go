package sink

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"gonum.org/v1/plot/palette"
)

// Color is an opaque sRGB colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a #rrggbb colour as produced by Hex.
func ParseHex(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("colour %q is not #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return c, nil
}

const goldenRatioConjugate = 0.618033988749895

// Palette assigns a stable colour to each envelope ordinal. The same seed
// always yields the same sequence.
type Palette struct {
	offset float64
}

// NewPalette derives the starting hue from seed.
func NewPalette(seed uint64) Palette {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return Palette{offset: rng.Float64()}
}

// Color returns the colour for ordinal i.
func (p Palette) Color(i int) Color {
	h := math.Mod(p.offset+float64(i)*goldenRatioConjugate, 1)
	return fromHSV(h, 0.65, 0.95)
}

// fromHSV converts hue, saturation and value in [0, 1] to an opaque Color.
func fromHSV(h, s, v float64) Color {
	c := color.RGBAModel.Convert(palette.HSVA{H: h, S: s, V: v, A: 1}).(color.RGBA)
	return Color{R: c.R, G: c.G, B: c.B}
}
