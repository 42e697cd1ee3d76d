package pipeline

import (
	"fmt"
	"strings"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/background"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/transform"
)

// Alignment positions the text inside a background wider than it.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// ParseAlignment accepts "left", "center", "right" or the codes 0-2.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "0":
		return AlignLeft, nil
	case "center", "centre", "1":
		return AlignCenter, nil
	case "right", "2":
		return AlignRight, nil
	default:
		return 0, fmt.Errorf("%w: unknown alignment %q", ErrInvalidRequest, s)
	}
}

// PixelFormat is the pixel layout of the final image.
type PixelFormat string

const (
	FormatRGB  PixelFormat = "RGB"
	FormatRGBA PixelFormat = "RGBA"
	FormatL    PixelFormat = "L"
)

// ParsePixelFormat accepts RGB, RGBA or L in any case.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch f := PixelFormat(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return FormatRGB, nil
	case FormatRGB, FormatRGBA, FormatL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown pixel format %q", ErrInvalidRequest, s)
	}
}

// BoxFormat selects how bounding boxes are written.
type BoxFormat int

const (
	BoxesNone BoxFormat = iota
	// BoxesLines writes "<name>_boxes.txt", one "x1 y1 x2 y2" line per unit.
	BoxesLines
	// BoxesChars writes a tesseract "<name>.box" file and "<name>.gt.txt".
	BoxesChars
)

func (b BoxFormat) String() string {
	switch b {
	case BoxesNone:
		return "none"
	case BoxesLines:
		return "lines"
	case BoxesChars:
		return "chars"
	default:
		return fmt.Sprintf("BoxFormat(%d)", int(b))
	}
}

// ParseBoxFormat accepts "none", "lines", "chars" or the codes 0-2.
func ParseBoxFormat(s string) (BoxFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return BoxesNone, nil
	case "lines", "boxes", "1":
		return BoxesLines, nil
	case "chars", "box", "tesseract", "2":
		return BoxesChars, nil
	default:
		return 0, fmt.Errorf("%w: unknown box format %q", ErrInvalidRequest, s)
	}
}

// NameFormat selects how output files are named.
type NameFormat int

const (
	// NameTextIndex names files "<text>_<index>".
	NameTextIndex NameFormat = iota
	// NameIndexText names files "<index>_<text>".
	NameIndexText
	// NameIndex names files "<index>".
	NameIndex
)

func (n NameFormat) String() string {
	switch n {
	case NameTextIndex:
		return "text_index"
	case NameIndexText:
		return "index_text"
	case NameIndex:
		return "index"
	default:
		return fmt.Sprintf("NameFormat(%d)", int(n))
	}
}

// ParseNameFormat accepts "text_index", "index_text", "index" or the codes 0-2.
func ParseNameFormat(s string) (NameFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text_index", "0":
		return NameTextIndex, nil
	case "index_text", "1":
		return NameIndexText, nil
	case "index", "2":
		return NameIndex, nil
	default:
		return 0, fmt.Errorf("%w: unknown name format %q", ErrInvalidRequest, s)
	}
}

// Blur configures the Gaussian blur of the final image.
type Blur struct {
	Radius float64 `json:"radius" yaml:"radius"`
	// Random draws the radius uniformly from [0, Radius) instead.
	Random bool `json:"random" yaml:"random"`
}

// Output selects the artifacts of a request and how they are named.
type Output struct {
	Mask       bool
	Boxes      BoxFormat
	Extension  string
	NameFormat NameFormat
	Index      int
	Dir        string
}

// RenderRequest is the complete description of one sample. It is never
// modified by the pipeline.
type RenderRequest struct {
	Text     string
	Font     glyph.FontSource
	FontSize float64

	TextColor   imgutil.ColorSpec
	StrokeColor imgutil.ColorSpec
	StrokeWidth int

	Orientation      glyph.Orientation
	SpaceWidth       float64
	CharacterSpacing int
	WordSplit        bool
	Fit              bool

	// DrawBoxesPercent is the chance, 0-100, that token outlines are drawn
	// onto the image.
	DrawBoxesPercent int

	Alignment Alignment
	Margins   transform.Margins
	Skew      transform.Skew
	Blur      Blur

	Background background.Generator
	Distortion transform.Distortion

	// Size is the output height for horizontal text and the output width
	// for vertical text.
	Size int
	// Width is the output width for horizontal text; <= 0 fits the text.
	Width int

	PixelFormat PixelFormat
	Output      Output

	// Handwritten selects the handwritten renderer, which is not built in.
	Handwritten bool
}

// extension returns the normalized output extension, "jpg" by default.
func (r *RenderRequest) extension() string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(r.Output.Extension), "."))
	if ext == "" {
		return "jpg"
	}
	return ext
}

// Validate reports configuration errors that must stop a request before
// anything is rendered.
func (r *RenderRequest) Validate() error {
	if r.Handwritten {
		if r.Orientation == glyph.Vertical {
			return ErrVerticalHandwritten
		}
		return fmt.Errorf("%w: handwritten renderer is not available", ErrInvalidRequest)
	}
	if r.Orientation != glyph.Horizontal && r.Orientation != glyph.Vertical {
		return fmt.Errorf("%w: %d", glyph.ErrUnknownOrientation, int(r.Orientation))
	}
	if r.Font == nil {
		return glyph.ErrNoFont
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidRequest, r.Size)
	}
	if r.FontSize <= 0 {
		return fmt.Errorf("%w: font size must be positive, got %v", ErrInvalidRequest, r.FontSize)
	}
	if r.Background == nil {
		return fmt.Errorf("%w: no background generator", ErrInvalidRequest)
	}
	if r.DrawBoxesPercent < 0 || r.DrawBoxesPercent > 100 {
		return fmt.Errorf("%w: draw boxes percent %d outside 0-100", ErrInvalidRequest, r.DrawBoxesPercent)
	}
	if r.Blur.Radius < 0 {
		return fmt.Errorf("%w: negative blur radius", ErrInvalidRequest)
	}
	if _, err := ParsePixelFormat(string(r.PixelFormat)); err != nil {
		return err
	}
	if ext := r.extension(); !imgutil.ValidExtension(ext) {
		return fmt.Errorf("%w: unsupported image extension %q", ErrInvalidRequest, ext)
	}
	if r.Output.Boxes < BoxesNone || r.Output.Boxes > BoxesChars {
		return fmt.Errorf("%w: unknown box format %d", ErrInvalidRequest, int(r.Output.Boxes))
	}
	if r.Alignment < AlignLeft || r.Alignment > AlignRight {
		return fmt.Errorf("%w: unknown alignment %d", ErrInvalidRequest, int(r.Alignment))
	}
	return nil
}
