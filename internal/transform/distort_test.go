package transform

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// coordinatePair returns a canvas whose R and G channels hold each pixel's
// x and y, and a mask whose IDs encode the same coordinate.
func coordinatePair(w, h int) (*image.NRGBA, *mask.Mask) {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	m := mask.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			canvas.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
			m.Set(x, y, uint32(y*w+x+1))
		}
	}
	return canvas, m
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{"": Identity, "none": Identity, "0": Identity, "SIN": Sin, "1": Sin, "cos": Cos, "2": Cos, "random": Random, "3": Random}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("tan")
	assert.Error(t, err)
}

func TestParseAxis(t *testing.T) {
	tests := map[string]Axis{"": AxisVertical, "vertical": AxisVertical, "0": AxisVertical, "horizontal": AxisHorizontal, "1": AxisHorizontal, "both": AxisBoth, "2": AxisBoth}
	for in, want := range tests {
		got, err := ParseAxis(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAxis("diagonal")
	assert.Error(t, err)
}

func TestNewField_Identity(t *testing.T) {
	f, err := NewField(Identity, AxisBoth, 30, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 30, f.Width)
	assert.Equal(t, 10, f.Height)

	dx, dy := f.Sample(4, 7)
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestNewField_Growth(t *testing.T) {
	const w, h = 200, 36
	maxAmp := int(math.Sqrt(h))

	for _, kind := range []Kind{Sin, Cos} {
		for seed := int64(0); seed < 10; seed++ {
			v, err := NewField(kind, AxisVertical, w, h, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			assert.Equal(t, w, v.Width)
			grow := v.Height - h
			assert.True(t, grow >= 2 && grow <= 2*maxAmp && grow%2 == 0, "vertical growth %d", grow)
			for x := 0; x < w; x++ {
				dx, dy := v.Sample(x, 0)
				require.Zero(t, dx)
				require.True(t, -dy >= 0 && -dy <= grow, "column %d offset %d", x, -dy)
			}

			hz, err := NewField(kind, AxisHorizontal, w, h, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			assert.Equal(t, h, hz.Height)
			grow = hz.Width - w
			assert.True(t, grow >= 2 && grow <= 2*maxAmp, "horizontal growth %d", grow)

			both, err := NewField(kind, AxisBoth, w, h, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			assert.Greater(t, both.Width, w)
			assert.Greater(t, both.Height, h)
		}
	}
}

func TestNewField_SmallCanvasAmplitude(t *testing.T) {
	f, err := NewField(Sin, AxisVertical, 10, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, f.Height)
}

func TestNewField_Errors(t *testing.T) {
	_, err := NewField(Kind(9), AxisVertical, 10, 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = NewField(Sin, Axis(5), 10, 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestNewField_RandomPicksEveryKind(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	identity, displaced := 0, 0
	for i := 0; i < 60; i++ {
		f, err := NewField(Random, AxisVertical, 50, 16, rng)
		require.NoError(t, err)
		if f.Height == 16 {
			identity++
		} else {
			displaced++
		}
	}
	assert.Positive(t, identity)
	assert.Positive(t, displaced)
}

func TestWarp_CanvasAndMaskShareSamples(t *testing.T) {
	const w, h = 120, 25
	for _, axis := range []Axis{AxisVertical, AxisHorizontal, AxisBoth} {
		canvas, m := coordinatePair(w, h)
		f, err := NewField(Sin, axis, w, h, rand.New(rand.NewSource(77)))
		require.NoError(t, err)

		wc, wm := Warp(f, canvas, m)
		require.Equal(t, image.Rect(0, 0, f.Width, f.Height), wc.Rect)
		require.Equal(t, f.Width, wm.Width)

		inside := 0
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				dx, dy := f.Sample(x, y)
				sx, sy := x+dx, y+dy
				id := wm.At(x, y)
				px := wc.NRGBAAt(x, y)

				if sx < 0 || sy < 0 || sx >= w || sy >= h {
					require.Zero(t, id)
					require.Zero(t, px.A)
					continue
				}
				inside++
				require.Equal(t, uint32(sy*w+sx+1), id, "%v mask at (%d,%d)", axis, x, y)
				require.Equal(t, color.NRGBA{R: uint8(sx), G: uint8(sy), A: 0xff}, px, "%v canvas at (%d,%d)", axis, x, y)
			}
		}
		assert.Equal(t, w*h, inside, "%v: every source pixel lands exactly once", axis)
	}
}

func TestWarp_SameSeedSameResult(t *testing.T) {
	canvas, m := coordinatePair(80, 20)
	d := Distortion{Kind: Cos, Axis: AxisBoth}

	a, am, err := Distort(d, canvas, m, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, bm, err := Distort(d, canvas, m, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, am.IDs, bm.IDs)
}

func TestDistort_IdentityPassesThrough(t *testing.T) {
	canvas, m := coordinatePair(10, 4)
	c, mm, err := Distort(Distortion{Kind: Identity}, canvas, m, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Same(t, canvas, c)
	assert.Same(t, m, mm)
}
