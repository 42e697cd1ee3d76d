package transform

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// ErrNoRoom is returned when the margins leave no room for text.
var ErrNoRoom = errors.New("margins leave no room for text")

// Margins are the space kept free around the text, in output pixels.
type Margins struct {
	Top    int `json:"top" yaml:"top"`
	Left   int `json:"left" yaml:"left"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Right  int `json:"right" yaml:"right"`
}

// Horizontal returns Left+Right.
func (m Margins) Horizontal() int { return m.Left + m.Right }

// Vertical returns Top+Bottom.
func (m Margins) Vertical() int { return m.Top + m.Bottom }

// Resize scales canvas and m so the text fits size once margins are taken
// off: horizontal text gets a fixed height, vertical text a fixed width, and
// the other side follows the aspect ratio.
func Resize(canvas *image.NRGBA, m *mask.Mask, o glyph.Orientation, size int, margins Margins) (*image.NRGBA, *mask.Mask, error) {
	cw, ch := canvas.Rect.Dx(), canvas.Rect.Dy()
	if cw == 0 || ch == 0 {
		return nil, nil, fmt.Errorf("cannot resize empty canvas %dx%d", cw, ch)
	}

	var w, h int
	switch o {
	case glyph.Horizontal:
		h = size - margins.Vertical()
		w = int(float64(cw) * float64(h) / float64(ch))
	case glyph.Vertical:
		w = size - margins.Horizontal()
		h = int(float64(ch) * float64(w) / float64(cw))
	default:
		return nil, nil, fmt.Errorf("%w: %d", glyph.ErrUnknownOrientation, int(o))
	}
	if w <= 0 || h <= 0 {
		return nil, nil, fmt.Errorf("%w: size %d, margins %+v", ErrNoRoom, size, margins)
	}

	return imaging.Resize(canvas, w, h, imaging.Lanczos), m.Resize(w, h), nil
}

// BackgroundSize returns the background dimensions for a resized text
// canvas. Horizontal text is size tall and either width wide, when width is
// positive, or as wide as the text plus the horizontal margins. Vertical
// text is size wide and as tall as the text plus the vertical margins.
func BackgroundSize(o glyph.Orientation, textW, textH, size, width int, margins Margins) (w, h int) {
	if o == glyph.Vertical {
		return size, textH + margins.Vertical()
	}
	if width > 0 {
		return width, size
	}
	return textW + margins.Horizontal(), size
}
