package glyph

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSource creates sized font faces.
//
// Faces from golang.org/x/image are not safe for concurrent use, so the
// renderer asks for a fresh face on every call. A FontSource itself must be
// safe to share between goroutines.
type FontSource interface {
	NewFace(size float64) (font.Face, error)
}

// FaceFunc adapts an ordinary function to the FontSource interface.
type FaceFunc func(size float64) (font.Face, error)

// NewFace calls f(size).
func (f FaceFunc) NewFace(size float64) (font.Face, error) {
	return f(size)
}

// OpenType is a parsed TrueType or OpenType font file.
type OpenType struct {
	name string
	font *opentype.Font
}

// LoadFont reads and parses the font file at path.
func LoadFont(path string) (*OpenType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	ot, err := ParseFont(data)
	if err != nil {
		return nil, err
	}
	ot.name = filepath.Base(path)
	return ot, nil
}

// ParseFont parses font data already held in memory.
func ParseFont(data []byte) (*OpenType, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &OpenType{font: f}, nil
}

// DefaultFont returns Go Regular, the font used when none is configured.
func DefaultFont() (*OpenType, error) {
	ot, err := ParseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	ot.name = "goregular"
	return ot, nil
}

// Name returns the base name of the file the font was loaded from, or an
// empty string for fonts parsed from memory.
func (o *OpenType) Name() string {
	return o.name
}

// NewFace returns a face at size points, 72 DPI, so one point is one pixel.
func (o *OpenType) NewFace(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	face, err := opentype.NewFace(o.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}
