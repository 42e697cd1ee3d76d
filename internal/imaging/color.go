package imaging

import (
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSpec is a text or stroke color configuration.
//
// A spec is either a single solid color or a pair of colors. A pair does not
// describe a gradient: at resolution time every channel is drawn
// independently and uniformly between the two endpoints, once per render,
// and the whole text uses that single color.
type ColorSpec struct {
	From   color.NRGBA
	To     color.NRGBA
	random bool
}

// Solid returns a spec that always resolves to c (alpha forced opaque).
func Solid(c color.NRGBA) ColorSpec {
	c.A = 0xff
	return ColorSpec{From: c, To: c}
}

// RandomBetween returns a spec that resolves to a per-channel uniform pick
// between a and b. The order of a and b does not matter.
func RandomBetween(a, b color.NRGBA) ColorSpec {
	a.A, b.A = 0xff, 0xff
	return ColorSpec{From: a, To: b, random: true}
}

// Resolve picks the concrete opaque color for one render.
func (s ColorSpec) Resolve(rng *rand.Rand) color.NRGBA {
	if !s.random {
		return color.NRGBA{R: s.From.R, G: s.From.G, B: s.From.B, A: 0xff}
	}
	return color.NRGBA{
		R: channelBetween(rng, s.From.R, s.To.R),
		G: channelBetween(rng, s.From.G, s.To.G),
		B: channelBetween(rng, s.From.B, s.To.B),
		A: 0xff,
	}
}

// String formats s the way ParseColorSpec reads it.
func (s ColorSpec) String() string {
	if !s.random {
		return Hex(s.From)
	}
	return Hex(s.From) + "," + Hex(s.To)
}

// ParseColorSpec parses "#RRGGBB" into a solid spec and "#RRGGBB,#RRGGBB"
// into a RandomBetween spec. Short "#RGB" forms are accepted too.
func ParseColorSpec(s string) (ColorSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return ColorSpec{}, fmt.Errorf("invalid color spec %q: at most two colors", s)
	}

	colors := make([]color.NRGBA, 0, len(parts))
	for _, p := range parts {
		c, err := colorful.Hex(strings.TrimSpace(p))
		if err != nil {
			return ColorSpec{}, fmt.Errorf("invalid color %q: %w", p, err)
		}
		r, g, b := c.RGB255()
		colors = append(colors, color.NRGBA{R: r, G: g, B: b, A: 0xff})
	}

	if len(colors) == 1 {
		return Solid(colors[0]), nil
	}
	return RandomBetween(colors[0], colors[1]), nil
}

// Hex formats c as "#RRGGBB" (alpha excluded).
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// channelBetween draws uniformly from the closed range spanned by a and b.
func channelBetween(rng *rand.Rand, a, b uint8) uint8 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + uint8(rng.Intn(int(hi-lo)+1))
}

// Intensity returns the mean of the R, G and B channels of c on a 0-255 scale.
func Intensity(c color.NRGBA) float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3.0
}
