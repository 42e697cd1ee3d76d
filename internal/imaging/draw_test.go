package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawRectOutline(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	red := color.NRGBA{R: 255, A: 255}

	DrawRectOutline(img, image.Rect(2, 3, 8, 10), red)

	tests := []struct {
		x, y int
		want bool
	}{
		{2, 3, true},   // top-left corner
		{7, 3, true},   // top-right corner
		{2, 9, true},   // bottom-left corner
		{7, 9, true},   // bottom-right corner
		{5, 3, true},   // top edge
		{2, 6, true},   // left edge
		{5, 6, false},  // interior
		{8, 3, false},  // just right of the box
		{5, 10, false}, // just below the box
	}

	for _, tt := range tests {
		got := img.NRGBAAt(tt.x, tt.y) == red
		if got != tt.want {
			t.Errorf("pixel (%d,%d) outlined: got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawRectOutline_ClipsAndEmpty(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	c := color.NRGBA{G: 255, A: 255}

	// Must not panic when the rectangle leaves the image.
	DrawRectOutline(img, image.Rect(-3, -3, 10, 10), c)
	DrawRectOutline(img, image.Rectangle{}, c)

	if img.NRGBAAt(2, 2) == c {
		t.Error("interior pixel should not be drawn")
	}
}

func TestExpandClip(t *testing.T) {
	bounds := image.Rect(0, 0, 20, 10)

	got := ExpandClip(image.Rect(1, 1, 5, 9), 2, bounds)
	if got != image.Rect(0, 0, 7, 10) {
		t.Errorf("ExpandClip: got %v, want (0,0)-(7,10)", got)
	}

	outside := ExpandClip(image.Rect(30, 30, 35, 35), 2, bounds)
	if !outside.Empty() {
		t.Errorf("ExpandClip outside bounds: got %v, want empty", outside)
	}
}
