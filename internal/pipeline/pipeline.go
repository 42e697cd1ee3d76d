// Package pipeline turns a RenderRequest into a labeled text image.
//
// The stages run in a fixed order: glyph rendering, rotation, distortion,
// resizing, background synthesis, the contrast gate, placement, pixel format
// conversion, blur, box decoding and naming. Emit persists an accepted result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"strings"

	"github.com/anthonynsimon/bild/channel"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/logging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/transform"
)

var (
	// ErrInvalidRequest wraps every request validation failure.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrVerticalHandwritten is returned for handwritten vertical text.
	ErrVerticalHandwritten = errors.New("vertical handwritten text is not supported")
)

// MinContrast is the smallest accepted difference between the mean intensity
// of the ink and that of the background.
const MinContrast = 15.0

// Rejection reasons.
const (
	ReasonNoInk       = "no-ink"
	ReasonLowContrast = "low-contrast"
)

// Outcome tells whether a sample passed the quality gate.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the product of one Render call.
type Result struct {
	// Image is an *image.NRGBA, or an *image.Gray for FormatL.
	Image image.Image
	// Mask is set when the request asks for a mask or for boxes.
	Mask  *mask.Mask
	Boxes []mask.Box
	// Text is the ground truth, with spaces removed when SpaceWidth is 0.
	Text  string
	Units []glyph.Unit
	Name  string

	Outcome Outcome

	output Output
	ext    string
}

// Pipeline renders requests. It holds no per-request state and is safe for
// concurrent use; each call must bring its own *rand.Rand.
type Pipeline struct {
	renderer *glyph.Renderer
	log      *zap.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(log *zap.Logger) *Pipeline {
	log = logging.OrNop(log)
	return &Pipeline{
		renderer: glyph.NewRenderer(log.Named("glyph")),
		log:      log,
	}
}

// Render runs every stage for req. A sample failing the contrast gate is
// returned with Outcome.Accepted false and a nil error; errors are reserved
// for invalid requests, cancellation and I/O failures.
func (p *Pipeline) Render(ctx context.Context, req RenderRequest, rng *rand.Rand) (*Result, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	text := norm.NFC.String(req.Text)
	drawBoxes := req.DrawBoxesPercent > 0 && rng.Intn(101) < req.DrawBoxesPercent

	canvas, m, units, err := p.renderer.Render(glyph.Request{
		Text:             text,
		Font:             req.Font,
		Size:             req.FontSize,
		Orientation:      req.Orientation,
		TextColor:        req.TextColor,
		StrokeColor:      req.StrokeColor,
		StrokeWidth:      req.StrokeWidth,
		SpaceWidth:       req.SpaceWidth,
		CharacterSpacing: req.CharacterSpacing,
		WordSplit:        req.WordSplit,
		Fit:              req.Fit,
		DrawBoxes:        drawBoxes,
	}, rng)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	angle := transform.SkewAngle(req.Skew, rng)
	canvas, m = transform.Rotate(canvas, m, angle)

	canvas, m, err = transform.Distort(req.Distortion, canvas, m, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas, m, err = transform.Resize(canvas, m, req.Orientation, req.Size, req.Margins)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	bgW, bgH := transform.BackgroundSize(req.Orientation, canvas.Rect.Dx(), canvas.Rect.Dy(), req.Size, req.Width, req.Margins)
	bg, err := req.Background.Generate(bgH, bgW, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate background: %w", err)
	}
	if got := bg.Bounds(); got.Dx() != bgW || got.Dy() != bgH {
		return nil, fmt.Errorf("background is %dx%d, want %dx%d", got.Dx(), got.Dy(), bgW, bgH)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.SpaceWidth == 0 {
		text = strings.ReplaceAll(text, " ", "")
	}
	res := &Result{
		Text:   text,
		Units:  units,
		output: req.Output,
		ext:    req.extension(),
	}

	ink := imgutil.MaskedMeanIntensity(canvas, func(x, y int) bool { return m.At(x, y) != 0 })
	back := imgutil.MeanIntensity(bg)
	res.Outcome = ContrastGate(ink, back)
	if !res.Outcome.Accepted {
		p.log.Info("sample rejected",
			zap.String("reason", res.Outcome.Reason),
			zap.Float64("ink_mean", ink.Mean),
			zap.Float64("background_mean", back.Mean),
			zap.Int("ink_pixels", ink.Pixels))
		return res, nil
	}

	offset := placement(req.Alignment, req.Width, bgW, canvas.Rect.Dx(), req.Margins)
	composite := imaging.Overlay(bg, canvas, offset, 1.0)
	full := mask.New(bgW, bgH)
	full.Paste(m, offset)

	format, _ := ParsePixelFormat(string(req.PixelFormat))
	var out image.Image = convert(composite, format)

	radius := req.Blur.Radius
	if req.Blur.Random {
		radius = rng.Float64() * radius
	}
	if radius > 0 {
		blurred := imaging.Blur(out, radius)
		out = blurred
		if format == FormatL {
			out = channel.Extract(blurred, channel.Red)
		}
	}
	res.Image = out

	if req.Output.Mask || req.Output.Boxes != BoxesNone {
		res.Mask = full
	}
	if req.Output.Boxes != BoxesNone {
		res.Boxes = mask.Decode(full, unitIDs(units, req.Output.Boxes == BoxesChars))
	}
	res.Name = fileName(text, req.Output.NameFormat, req.Output.Index)

	p.log.Debug("sample rendered",
		zap.String("name", res.Name),
		zap.Int("width", bgW),
		zap.Int("height", bgH),
		zap.Stringer("text_color", req.TextColor),
		zap.Float64("skew", angle),
		zap.Float64("blur", radius),
		zap.Int("units", len(units)),
		zap.Int("boxes", len(res.Boxes)))
	return res, nil
}

// ContrastGate accepts a sample when the mean intensity of its ink differs
// from the mean intensity of the background by at least MinContrast.
func ContrastGate(ink, background imgutil.IntensityStats) Outcome {
	if ink.Pixels == 0 {
		return Outcome{Reason: ReasonNoInk}
	}
	if imgutil.Contrast(ink, background) < MinContrast {
		return Outcome{Reason: ReasonLowContrast}
	}
	return Outcome{Accepted: true}
}

// placement returns the top-left corner of the text inside the background.
// Without an explicit width the background is sized to the text and the text
// is always left-aligned.
func placement(a Alignment, width, bgW, textW int, margins transform.Margins) image.Point {
	if width <= 0 {
		a = AlignLeft
	}
	switch a {
	case AlignCenter:
		return image.Pt(int(float64(bgW)/2-float64(textW)/2), margins.Top)
	case AlignRight:
		return image.Pt(bgW-textW-margins.Right, margins.Top)
	default:
		return image.Pt(margins.Left, margins.Top)
	}
}

// convert applies the requested pixel format to the composite.
func convert(img *image.NRGBA, format PixelFormat) image.Image {
	switch format {
	case FormatRGBA:
		return img
	case FormatL:
		return channel.Extract(effect.Grayscale(img), channel.Red)
	default:
		opaque := imaging.Clone(img)
		for i := 3; i < len(opaque.Pix); i += 4 {
			opaque.Pix[i] = 0xff
		}
		return opaque
	}
}

// unitIDs lists the mask IDs to decode, skipping whitespace units when
// skipSpaces is set.
func unitIDs(units []glyph.Unit, skipSpaces bool) []uint32 {
	ids := make([]uint32, 0, len(units))
	for _, u := range units {
		if skipSpaces && u.IsSpace() {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids
}
