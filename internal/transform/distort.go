package transform

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// Kind selects the displacement function.
type Kind int

const (
	Identity Kind = iota
	Sin
	Cos
	// Random picks Identity, Sin or Cos on every call.
	Random
)

func (k Kind) String() string {
	switch k {
	case Identity:
		return "none"
	case Sin:
		return "sin"
	case Cos:
		return "cos"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "none", "sin", "cos", "random" or the numeric codes 0-3.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "identity", "0":
		return Identity, nil
	case "sin", "sine", "1":
		return Sin, nil
	case "cos", "cosine", "2":
		return Cos, nil
	case "random", "3":
		return Random, nil
	default:
		return 0, fmt.Errorf("unknown distortion %q", s)
	}
}

// Axis selects which pixels a distortion displaces.
type Axis int

const (
	// AxisVertical shifts every column up or down by a function of x.
	AxisVertical Axis = iota
	// AxisHorizontal shifts every row left or right by a function of y.
	AxisHorizontal
	// AxisBoth applies the vertical shift, then the horizontal one.
	AxisBoth
)

func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	case AxisBoth:
		return "both"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "vertical", "horizontal", "both" or the codes 0-2.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vertical", "v", "0":
		return AxisVertical, nil
	case "horizontal", "h", "1":
		return AxisHorizontal, nil
	case "both", "2":
		return AxisBoth, nil
	default:
		return 0, fmt.Errorf("unknown distortion axis %q", s)
	}
}

// Distortion is the distortion configuration of a request.
type Distortion struct {
	Kind Kind `json:"kind" yaml:"kind"`
	Axis Axis `json:"axis" yaml:"axis"`
}

const (
	minPeriod = 90
	maxPeriod = 360
)

// Field is an inverse displacement map: the destination pixel (x, y) takes
// its value from the source pixel (x+dx, y+dy) where dx, dy = Sample(x, y).
//
// A Field is built for one source size and is immutable once created.
type Field struct {
	// Width and Height are the destination size.
	Width, Height int

	// col holds the downward shift of each source column, row the rightward
	// shift of each destination row. A nil slice means no shift.
	col []int
	row []int
}

// Sample returns the source offset for destination pixel (x, y).
func (f *Field) Sample(x, y int) (dx, dy int) {
	if f.row != nil && y >= 0 && y < len(f.row) {
		dx = -f.row[y]
	}
	if sx := x + dx; f.col != nil && sx >= 0 && sx < len(f.col) {
		dy = -f.col[sx]
	}
	return dx, dy
}

// NewField builds the displacement field for a width x height source.
//
// Amplitude is drawn from [1, max(1, floor(sqrt(height)))] and the period
// from [90, 360) pixels, independently per displaced axis. The destination
// grows by twice the amplitude along each displaced axis so no ink leaves
// the frame.
func NewField(kind Kind, axis Axis, width, height int, rng *rand.Rand) (*Field, error) {
	if axis < AxisVertical || axis > AxisBoth {
		return nil, fmt.Errorf("unknown distortion axis %d", int(axis))
	}
	if kind == Random {
		kind = Kind(rng.Intn(3))
	}

	var wave func(float64) float64
	switch kind {
	case Identity:
		return &Field{Width: width, Height: height}, nil
	case Sin:
		wave = math.Sin
	case Cos:
		wave = math.Cos
	default:
		return nil, fmt.Errorf("unknown distortion %d", int(kind))
	}

	maxAmp := max(1, int(math.Sqrt(float64(height))))
	f := &Field{Width: width, Height: height}

	if axis == AxisVertical || axis == AxisBoth {
		amp := 1 + rng.Intn(maxAmp)
		period := float64(minPeriod + rng.Intn(maxPeriod-minPeriod))
		f.col = offsets(wave, width, amp, period)
		f.Height += 2 * amp
	}
	if axis == AxisHorizontal || axis == AxisBoth {
		amp := 1 + rng.Intn(maxAmp)
		period := float64(minPeriod + rng.Intn(maxPeriod-minPeriod))
		f.row = offsets(wave, f.Height, amp, period)
		f.Width += 2 * amp
	}
	return f, nil
}

// offsets samples amp*wave(2πi/period) for i in [0,n), shifted into [0, 2*amp].
func offsets(wave func(float64) float64, n, amp int, period float64) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = int(math.Round(float64(amp)*wave(2*math.Pi*float64(i)/period))) + amp
	}
	return out
}

// Warp resamples canvas and m through f in a single pass over the
// destination, so both read from exactly the same source coordinates.
// Destination pixels that map outside the source stay transparent and 0.
func Warp(f *Field, canvas *image.NRGBA, m *mask.Mask) (*image.NRGBA, *mask.Mask) {
	src := canvas.Rect
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	out := mask.New(f.Width, f.Height)

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			dx, dy := f.Sample(x, y)
			sx, sy := x+dx, y+dy
			if sx < 0 || sy < 0 || sx >= src.Dx() || sy >= src.Dy() {
				continue
			}
			so := canvas.PixOffset(src.Min.X+sx, src.Min.Y+sy)
			do := dst.PixOffset(x, y)
			copy(dst.Pix[do:do+4], canvas.Pix[so:so+4])
			out.IDs[y*f.Width+x] = m.At(sx, sy)
		}
	}
	return dst, out
}

// Distort draws a field for canvas from d and applies it.
func Distort(d Distortion, canvas *image.NRGBA, m *mask.Mask, rng *rand.Rand) (*image.NRGBA, *mask.Mask, error) {
	f, err := NewField(d.Kind, d.Axis, canvas.Rect.Dx(), canvas.Rect.Dy(), rng)
	if err != nil {
		return nil, nil, err
	}
	if f.col == nil && f.row == nil {
		return canvas, m, nil
	}
	c, mm := Warp(f, canvas, m)
	return c, mm, nil
}
