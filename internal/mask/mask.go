// Package mask implements the instance mask that travels alongside every
// rendered text canvas.
//
// A Mask holds one uint32 instance ID per pixel. ID 0 is reserved for "no
// ink"; every rendered unit (a character, or a word when word splitting is on)
// owns exactly one non-zero ID. Geometric operations on a mask never
// interpolate: resampling is nearest-neighbor so that no pixel ever carries an
// ID that was not written by the renderer.
//
// # Coordinate System
//
// Masks are always anchored at (0,0). X increases rightward and Y increases
// downward, matching the image.NRGBA canvases they are paired with.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// MaxEncodableID is the largest ID that survives a round trip through Image.
// The PNG encoding stores IDs in the 24 bits of the RGB channels.
const MaxEncodableID = 1<<24 - 1

// ErrIDOverflow is returned by Image when an ID cannot be represented in the
// 24-bit PNG encoding.
var ErrIDOverflow = errors.New("mask: instance id exceeds 24-bit encoding")

// Mask is a raster of instance IDs parallel to a canvas.
type Mask struct {
	Width  int
	Height int
	// IDs is row-major, len(IDs) == Width*Height.
	IDs []uint32
}

// New returns an all-zero mask of the given size. Negative sizes are treated
// as zero.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		IDs:    make([]uint32, width*height),
	}
}

// Bounds returns the mask rectangle, always anchored at the origin.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At returns the ID at (x, y), or 0 outside the mask.
func (m *Mask) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.IDs[y*m.Width+x]
}

// Set writes id at (x, y). Writes outside the mask are ignored.
func (m *Mask) Set(x, y int, id uint32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.IDs[y*m.Width+x] = id
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, IDs: make([]uint32, len(m.IDs))}
	copy(out.IDs, m.IDs)
	return out
}

// Crop returns the part of m inside r. The result is re-anchored at (0,0).
// r is clipped to the mask bounds first.
func (m *Mask) Crop(r image.Rectangle) *Mask {
	r = r.Intersect(m.Bounds())
	out := New(r.Dx(), r.Dy())
	for y := 0; y < out.Height; y++ {
		src := (r.Min.Y+y)*m.Width + r.Min.X
		copy(out.IDs[y*out.Width:(y+1)*out.Width], m.IDs[src:src+out.Width])
	}
	return out
}

// Resize scales m to width x height with nearest-neighbor sampling.
//
// Source coordinates are taken at pixel centers, the same convention used by
// imaging.Resize, so a canvas and its mask resized to the same size stay
// spatially aligned.
func (m *Mask) Resize(width, height int) *Mask {
	out := New(width, height)
	if m.Width == 0 || m.Height == 0 || out.Width == 0 || out.Height == 0 {
		return out
	}
	sx := float64(m.Width) / float64(width)
	sy := float64(m.Height) / float64(height)
	cols := make([]int, width)
	for x := range cols {
		cols[x] = clamp(int((float64(x)+0.5)*sx), 0, m.Width-1)
	}
	for y := 0; y < height; y++ {
		srcY := clamp(int((float64(y)+0.5)*sy), 0, m.Height-1)
		row := m.IDs[srcY*m.Width : (srcY+1)*m.Width]
		dst := out.IDs[y*width : (y+1)*width]
		for x, srcX := range cols {
			dst[x] = row[srcX]
		}
	}
	return out
}

// Paste copies the non-zero IDs of src into m with src's origin at p.
// Pixels of src falling outside m are dropped.
func (m *Mask) Paste(src *Mask, p image.Point) {
	for y := 0; y < src.Height; y++ {
		dy := y + p.Y
		if dy < 0 || dy >= m.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			id := src.IDs[y*src.Width+x]
			if id == 0 {
				continue
			}
			m.Set(x+p.X, dy, id)
		}
	}
}

// Count returns the number of pixels carrying each non-zero ID.
func (m *Mask) Count() map[uint32]int {
	counts := make(map[uint32]int)
	for _, id := range m.IDs {
		if id != 0 {
			counts[id]++
		}
	}
	return counts
}

// Image encodes m as an opaque NRGBA image, ID packed big-endian into R, G
// and B. Background pixels are black.
func (m *Mask) Image() (*image.NRGBA, error) {
	img := image.NewNRGBA(m.Bounds())
	for i, id := range m.IDs {
		if id > MaxEncodableID {
			return nil, fmt.Errorf("%w: %d", ErrIDOverflow, id)
		}
		o := i * 4
		img.Pix[o] = uint8(id >> 16)
		img.Pix[o+1] = uint8(id >> 8)
		img.Pix[o+2] = uint8(id)
		img.Pix[o+3] = 0xff
	}
	return img, nil
}

// FromImage decodes a mask previously written with Image.
func FromImage(img image.Image) (*Mask, error) {
	if img == nil {
		return nil, errors.New("mask: nil image")
	}
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			m.IDs[y*m.Width+x] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return m, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
