package transform

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// labeledPair returns a fully opaque canvas whose red channel equals the
// mask ID of the same pixel. IDs run 1..w*h in row-major order.
func labeledPair(w, h int) (*image.NRGBA, *mask.Mask) {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	m := mask.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := uint32(y*w + x + 1)
			m.Set(x, y, id)
			canvas.SetNRGBA(x, y, color.NRGBA{R: uint8(id), A: 0xff})
		}
	}
	return canvas, m
}

func TestSkewAngle(t *testing.T) {
	assert.Equal(t, 7.5, SkewAngle(Skew{Angle: 7.5}, nil))

	rng := rand.New(rand.NewSource(3))
	for _, angle := range []float64{10, -10} {
		for i := 0; i < 100; i++ {
			a := SkewAngle(Skew{Angle: angle, Random: true}, rng)
			require.GreaterOrEqual(t, a, -10.0)
			require.LessOrEqual(t, a, 10.0)
		}
	}

	a := SkewAngle(Skew{Angle: 5, Random: true}, rand.New(rand.NewSource(9)))
	b := SkewAngle(Skew{Angle: 5, Random: true}, rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)
}

func TestRotate_ZeroIsCopy(t *testing.T) {
	canvas, m := labeledPair(5, 3)
	for _, angle := range []float64{0, 360, -720} {
		rc, rm := Rotate(canvas, m, angle)
		assert.Equal(t, canvas.Pix, rc.Pix)
		assert.Equal(t, m.IDs, rm.IDs)
		assert.NotSame(t, canvas, rc)
		assert.NotSame(t, m, rm)
	}
}

func TestRotate_RightAnglesKeepCanvasAndMaskInStep(t *testing.T) {
	canvas, m := labeledPair(5, 3)

	for _, angle := range []float64{90, 180, 270, -90} {
		rc, rm := Rotate(canvas, m, angle)
		require.Equal(t, rc.Rect.Dx(), rm.Width, "angle %v", angle)
		require.Equal(t, rc.Rect.Dy(), rm.Height, "angle %v", angle)

		for y := 0; y < rm.Height; y++ {
			for x := 0; x < rm.Width; x++ {
				assert.Equal(t, uint8(rm.At(x, y)), rc.NRGBAAt(x, y).R, "angle %v at (%d,%d)", angle, x, y)
			}
		}
	}

	rc, _ := Rotate(canvas, m, 90)
	assert.Equal(t, image.Rect(0, 0, 3, 5), rc.Rect)
}

func TestRotate_ArbitraryAngle(t *testing.T) {
	canvas, m := labeledPair(40, 12)
	rc, rm := Rotate(canvas, m, 17)

	require.Equal(t, rc.Rect.Dx(), rm.Width)
	require.Equal(t, rc.Rect.Dy(), rm.Height)
	assert.Greater(t, rm.Width, 40)
	assert.Greater(t, rm.Height, 12)

	counts := rm.Count()
	assert.NotEmpty(t, counts)
	for id := range counts {
		assert.True(t, id >= 1 && id <= 40*12, "invented id %d", id)
	}

	// Corners of the expanded frame are outside the rotated source.
	assert.Zero(t, rm.At(0, 0))
	assert.Zero(t, rc.NRGBAAt(0, 0).A)
}
