package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/logging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// Errors reported before anything is drawn.
var (
	ErrUnknownOrientation = errors.New("unknown orientation")
	ErrNoFont             = errors.New("no usable font")
	ErrEmptyText          = errors.New("empty text")
)

// boxPadding is how far debug boxes extend past a token's ink.
const boxPadding = 2

var boxColor = color.NRGBA{A: 0xff}

// Orientation is the direction the pen advances in.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation accepts "horizontal"/"vertical", their first letters, or
// the numeric forms "0"/"1".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal", "h", "0":
		return Horizontal, nil
	case "vertical", "v", "1":
		return Vertical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
	}
}

// Request holds everything the renderer needs for one string.
type Request struct {
	Text        string
	Font        FontSource
	Size        float64
	Orientation Orientation

	TextColor   imgutil.ColorSpec
	StrokeColor imgutil.ColorSpec
	StrokeWidth int

	// SpaceWidth multiplies the advance of the space glyph.
	SpaceWidth float64
	// CharacterSpacing is added between characters. It is ignored for
	// horizontal text when WordSplit is set.
	CharacterSpacing int
	WordSplit        bool
	Fit              bool

	// DrawBoxes outlines every token's ink on the canvas.
	DrawBoxes bool
}

// Unit is one rendered token and the mask ID its pixels carry.
type Unit struct {
	ID   uint32 `json:"id"`
	Text string `json:"text"`
}

// IsSpace reports whether u holds only whitespace and so never has ink.
func (u Unit) IsSpace() bool {
	return strings.TrimSpace(u.Text) == ""
}

// Renderer rasterizes text into a transparent canvas and its instance mask.
// A Renderer has no mutable state and may be shared between goroutines.
type Renderer struct {
	log *zap.Logger
}

// NewRenderer returns a Renderer logging recoverable problems to log.
func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{log: logging.OrNop(log)}
}

// Render draws req.Text and returns the canvas, a mask of the same size and
// the list of units in mask ID order. Unit i carries ID i+1.
//
// Colors are resolved from rng once: text color, fill alpha, stroke color.
func (r *Renderer) Render(req Request, rng *rand.Rand) (*image.NRGBA, *mask.Mask, []Unit, error) {
	if req.Orientation != Horizontal && req.Orientation != Vertical {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrUnknownOrientation, int(req.Orientation))
	}
	if req.Font == nil {
		return nil, nil, nil, ErrNoFont
	}
	text := norm.NFC.String(req.Text)
	if text == "" {
		return nil, nil, nil, ErrEmptyText
	}

	face, err := req.Font.NewFace(req.Size)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrNoFont, err)
	}
	defer face.Close()

	d, err := newDrawer(face, req, r.log)
	if err != nil {
		return nil, nil, nil, err
	}
	d.fill = req.TextColor.Resolve(rng)
	d.fill.A = uint8(50 + rng.Intn(206))
	d.stroke = req.StrokeColor.Resolve(rng)

	var tokens []string
	var canvas *image.NRGBA
	var m *mask.Mask
	if req.Orientation == Vertical {
		tokens = tokenize(text, false)
		canvas, m = d.vertical(tokens)
	} else {
		tokens = tokenize(text, req.WordSplit)
		canvas, m = d.horizontal(tokens)
	}

	if req.Fit {
		canvas, m = fit(canvas, m)
	}

	units := make([]Unit, len(tokens))
	for i, t := range tokens {
		units[i] = Unit{ID: uint32(i + 1), Text: t}
	}
	return canvas, m, units, nil
}

// tokenize splits text into words separated by single " " tokens, or into
// single characters.
func tokenize(text string, wordSplit bool) []string {
	if wordSplit {
		words := strings.Split(text, " ")
		tokens := make([]string, 0, 2*len(words))
		for i, w := range words {
			if i > 0 {
				tokens = append(tokens, " ")
			}
			if w != "" {
				tokens = append(tokens, w)
			}
		}
		return tokens
	}

	tokens := make([]string, 0, len(text))
	for _, c := range text {
		tokens = append(tokens, string(c))
	}
	return tokens
}

// zeroAdvance reports whether c is a combining mark drawn over the previous
// character without moving the pen.
func zeroAdvance(c rune) bool {
	switch {
	case c >= 0x0E47 && c <= 0x0E4E: // Thai tone marks
	case c == 0x0E31, c >= 0x0E34 && c <= 0x0E37: // Thai above vowels
	case c >= 0x0E38 && c <= 0x0E3A: // Thai below vowels
	case c == 0x0300, c == 0x0301, c == 0x0303, c == 0x0309, c == 0x0323: // Vietnamese tones
	default:
		return false
	}
	return true
}

type tokenMetrics struct {
	advance int
	// ink is relative to the token's pen position on the baseline.
	ink image.Rectangle
}

// drawer carries the state of one Render call.
type drawer struct {
	face font.Face
	req  Request
	log  *zap.Logger

	fill   color.NRGBA
	stroke color.NRGBA

	ascent       int
	lineHeight   int
	spaceAdvance int

	memo map[string]tokenMetrics
}

func newDrawer(face font.Face, req Request, log *zap.Logger) (*drawer, error) {
	fm := face.Metrics()
	d := &drawer{
		face:       face,
		req:        req,
		log:        log,
		ascent:     fm.Ascent.Ceil(),
		lineHeight: (fm.Ascent + fm.Descent).Ceil(),
		memo:       make(map[string]tokenMetrics),
	}
	if d.lineHeight <= 0 {
		return nil, fmt.Errorf("%w: face has no vertical metrics", ErrNoFont)
	}

	adv, ok := face.GlyphAdvance(' ')
	if !ok {
		log.Warn("font has no space glyph, using width 1")
		d.spaceAdvance = 1
	} else {
		d.spaceAdvance = int(math.Floor(float64(adv) / 64 * req.SpaceWidth))
	}
	return d, nil
}

// walk calls fn for every rune of s with the pen offset it is drawn at and
// returns the total advance. ok is false for runes the face cannot draw;
// those never move the pen.
func (d *drawer) walk(s string, fn func(c rune, pen fixed.Int26_6, ok bool)) fixed.Int26_6 {
	var pen fixed.Int26_6
	prev := rune(-1)
	for _, c := range s {
		adv, ok := d.face.GlyphAdvance(c)
		if !ok {
			fn(c, pen, false)
			continue
		}
		zero := zeroAdvance(c)
		if !zero && prev >= 0 {
			pen += d.face.Kern(prev, c)
		}
		fn(c, pen, true)
		if !zero {
			pen += adv
			prev = c
		}
	}
	return pen
}

func (d *drawer) measure(tok string) tokenMetrics {
	if m, ok := d.memo[tok]; ok {
		return m
	}

	var m tokenMetrics
	var ink fixed.Rectangle26_6
	adv := d.walk(tok, func(c rune, pen fixed.Int26_6, ok bool) {
		if !ok {
			d.log.Warn("glyph missing from font, skipping", zap.String("char", string(c)), zap.String("token", tok))
			return
		}
		b, _, ok := d.face.GlyphBounds(c)
		if !ok {
			return
		}
		ink = ink.Union(b.Add(fixed.Point26_6{X: pen}))
	})

	if tok == " " {
		m.advance = d.spaceAdvance
	} else {
		m.advance = adv.Round()
	}
	if !ink.Empty() {
		m.ink = image.Rect(ink.Min.X.Floor(), ink.Min.Y.Floor(), ink.Max.X.Ceil(), ink.Max.Y.Ceil())
	}
	d.memo[tok] = m
	return m
}

func (d *drawer) horizontal(tokens []string) (*image.NRGBA, *mask.Mask) {
	spacing := d.req.CharacterSpacing
	if d.req.WordSplit {
		spacing = 0
	}

	width := spacing * (len(tokens) - 1)
	for _, t := range tokens {
		width += d.measure(t).advance
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, max(width, 1), d.lineHeight))
	m := mask.New(canvas.Rect.Dx(), canvas.Rect.Dy())

	x := 0
	for i, t := range tokens {
		d.drawToken(canvas, m, t, image.Pt(x, d.ascent), uint32(i+1))
		x += d.measure(t).advance + spacing
	}
	return canvas, m
}

func (d *drawer) vertical(tokens []string) (*image.NRGBA, *mask.Mask) {
	spaceHeight := int(float64(d.lineHeight) * d.req.SpaceWidth)
	spacing := d.req.CharacterSpacing

	heights := make([]int, len(tokens))
	width := 1
	height := spacing * (len(tokens) - 1)
	for i, t := range tokens {
		heights[i] = d.lineHeight
		if t == " " {
			heights[i] = spaceHeight
		}
		height += heights[i]
		width = max(width, d.measure(t).advance)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, max(height, 1)))
	m := mask.New(canvas.Rect.Dx(), canvas.Rect.Dy())

	y := 0
	for i, t := range tokens {
		x := (width - d.measure(t).advance) / 2
		d.drawToken(canvas, m, t, image.Pt(x, y+d.ascent), uint32(i+1))
		y += heights[i] + spacing
	}
	return canvas, m
}

// drawToken composites one token with its pen at origin (baseline left) and
// writes id into m wherever the token leaves coverage.
func (d *drawer) drawToken(canvas *image.NRGBA, m *mask.Mask, tok string, origin image.Point, id uint32) {
	met := d.measure(tok)
	if met.ink.Empty() {
		return
	}

	region := met.ink.Add(origin).Inset(-(d.req.StrokeWidth + 1)).Intersect(canvas.Rect)
	if region.Empty() {
		return
	}

	// Coverage is rasterized once into a scratch buffer anchored at region.Min.
	cov := image.NewAlpha(image.Rect(0, 0, region.Dx(), region.Dy()))
	base := origin.Sub(region.Min)
	d.walk(tok, func(c rune, pen fixed.Int26_6, ok bool) {
		if !ok {
			return
		}
		dot := fixed.Point26_6{X: fixed.I(base.X) + pen, Y: fixed.I(base.Y)}
		dr, gm, mp, _, ok := d.face.Glyph(dot, c)
		if !ok {
			return
		}
		draw.DrawMask(cov, dr, image.Opaque, image.Point{}, gm, mp, draw.Over)
	})

	shape := image.Image(cov)
	if d.req.StrokeWidth > 0 {
		dilated := effect.Dilate(cov, float64(d.req.StrokeWidth))
		draw.DrawMask(canvas, region, image.NewUniform(d.stroke), image.Point{}, dilated, image.Point{}, draw.Over)
		shape = dilated
	}
	draw.DrawMask(canvas, region, image.NewUniform(d.fill), image.Point{}, cov, image.Point{}, draw.Over)

	for y := 0; y < region.Dy(); y++ {
		for x := 0; x < region.Dx(); x++ {
			if _, _, _, a := shape.At(x, y).RGBA(); a > 0 {
				m.Set(region.Min.X+x, region.Min.Y+y, id)
			}
		}
	}

	if d.req.DrawBoxes {
		d.drawBox(canvas, tok, met.ink.Add(origin))
	}
}

func (d *drawer) drawBox(canvas *image.NRGBA, tok string, ink image.Rectangle) {
	box := imgutil.ExpandClip(ink, boxPadding, canvas.Rect)
	if box.Min.Y >= box.Max.Y || box.Min.X >= box.Max.X {
		d.log.Debug("skipping degenerate box", zap.String("token", tok), zap.Stringer("box", box))
		return
	}
	imgutil.DrawRectOutline(canvas, box, boxColor)
}

// fit crops canvas and m to the canvas ink. A canvas without ink is returned
// unchanged.
func fit(canvas *image.NRGBA, m *mask.Mask) (*image.NRGBA, *mask.Mask) {
	r, ok := imgutil.InkBounds(canvas)
	if !ok {
		return canvas, m
	}
	return imaging.Crop(canvas, r), m.Crop(r)
}
