package transform

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// Skew configures the rotation applied to rendered text.
type Skew struct {
	// Angle is in degrees, counter-clockwise.
	Angle float64 `json:"angle" yaml:"angle"`
	// Random draws the angle uniformly from [-Angle, Angle] instead.
	Random bool `json:"random" yaml:"random"`
}

// SkewAngle resolves s to a concrete angle.
func SkewAngle(s Skew, rng *rand.Rand) float64 {
	if !s.Random {
		return s.Angle
	}
	a := math.Abs(s.Angle)
	return -a + rng.Float64()*2*a
}

// Rotate turns canvas and m counter-clockwise by angle degrees, growing the
// bounds so nothing is clipped. Uncovered canvas pixels are transparent and
// uncovered mask pixels are 0.
func Rotate(canvas *image.NRGBA, m *mask.Mask, angle float64) (*image.NRGBA, *mask.Mask) {
	if angle-math.Floor(angle/360)*360 == 0 {
		return imaging.Clone(canvas), m.Clone()
	}

	rotated := imaging.Rotate(canvas, angle, color.Transparent)
	return rotated, rotateMask(m, angle, rotated.Rect.Dx(), rotated.Rect.Dy())
}

// rotateMask maps every destination pixel back into m with the inverse of
// the rotation imaging.Rotate uses: both images are rotated about their
// centers. Sampling is nearest-neighbor.
func rotateMask(m *mask.Mask, angle float64, dstW, dstH int) *mask.Mask {
	out := mask.New(dstW, dstH)
	sin, cos := math.Sincos(math.Pi * angle / 180)

	srcXOff := float64(m.Width)/2 - 0.5
	srcYOff := float64(m.Height)/2 - 0.5
	dstXOff := float64(dstW)/2 - 0.5
	dstYOff := float64(dstH)/2 - 0.5

	for y := 0; y < dstH; y++ {
		fy := float64(y) - dstYOff
		for x := 0; x < dstW; x++ {
			fx := float64(x) - dstXOff
			sx := int(math.Round(fx*cos - fy*sin + srcXOff))
			sy := int(math.Round(fx*sin + fy*cos + srcYOff))
			if id := m.At(sx, sy); id != 0 {
				out.IDs[y*dstW+x] = id
			}
		}
	}
	return out
}
