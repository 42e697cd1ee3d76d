package transform

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

func TestResize(t *testing.T) {
	margins := Margins{Top: 5, Left: 4, Bottom: 5, Right: 6}

	tests := []struct {
		name         string
		w, h         int
		o            glyph.Orientation
		wantW, wantH int
	}{
		{"horizontal", 100, 20, glyph.Horizontal, 110, 22},
		{"horizontal truncates", 33, 20, glyph.Horizontal, 36, 22},
		{"vertical", 20, 100, glyph.Vertical, 22, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas, m := labeledPair(tt.w, tt.h)
			rc, rm, err := Resize(canvas, m, tt.o, 32, margins)
			require.NoError(t, err)

			assert.Equal(t, image.Rect(0, 0, tt.wantW, tt.wantH), rc.Rect)
			assert.Equal(t, tt.wantW, rm.Width)
			assert.Equal(t, tt.wantH, rm.Height)

			for id := range rm.Count() {
				assert.True(t, id >= 1 && id <= uint32(tt.w*tt.h), "invented id %d", id)
			}
		})
	}
}

func TestResize_Errors(t *testing.T) {
	canvas, m := labeledPair(10, 10)

	_, _, err := Resize(canvas, m, glyph.Horizontal, 10, Margins{Top: 5, Bottom: 5})
	assert.ErrorIs(t, err, ErrNoRoom)

	_, _, err = Resize(canvas, m, glyph.Orientation(3), 32, Margins{})
	assert.ErrorIs(t, err, glyph.ErrUnknownOrientation)

	_, _, err = Resize(image.NewNRGBA(image.Rect(0, 0, 0, 0)), mask.New(0, 0), glyph.Horizontal, 32, Margins{})
	assert.Error(t, err)
}

func TestBackgroundSize(t *testing.T) {
	margins := Margins{Top: 1, Left: 2, Bottom: 3, Right: 4}

	w, h := BackgroundSize(glyph.Horizontal, 100, 28, 32, 0, margins)
	assert.Equal(t, []int{106, 32}, []int{w, h})

	w, h = BackgroundSize(glyph.Horizontal, 100, 28, 32, 250, margins)
	assert.Equal(t, []int{250, 32}, []int{w, h})

	w, h = BackgroundSize(glyph.Vertical, 26, 140, 32, 250, margins)
	assert.Equal(t, []int{32, 144}, []int{w, h})
}
