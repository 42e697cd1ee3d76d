package imaging

import (
	"image"
	"image/color"
)

// DrawRectOutline draws a one pixel wide outline of r onto img in color c.
//
// r uses image.Rectangle conventions (Max exclusive), so the outline covers
// the pixels r.Min.X..r.Max.X-1 and r.Min.Y..r.Max.Y-1. Pixels outside img
// are skipped. An empty r draws nothing.
func DrawRectOutline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	bounds := img.Bounds()

	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.SetNRGBA(x, y, c)
		}
	}

	// Horizontal edges
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y-1)
	}

	// Vertical edges
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X-1, y)
	}
}

// ExpandClip grows r by pad pixels on every side and clips it to bounds.
func ExpandClip(r image.Rectangle, pad int, bounds image.Rectangle) image.Rectangle {
	return image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad, r.Max.Y+pad).Intersect(bounds)
}
