package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/mask"
)

// ErrRejected is returned by Emit for a result that failed the quality gate.
var ErrRejected = errors.New("sample was rejected")

// maxNameBytes keeps generated names well below common filesystem limits
// once the index and suffixes are added.
const maxNameBytes = 200

// fileName builds the base name of the output files.
func fileName(text string, format NameFormat, index int) string {
	idx := strconv.Itoa(index)
	switch format {
	case NameIndexText:
		return sanitizeName(idx + "_" + text)
	case NameIndex:
		return idx
	default:
		return sanitizeName(text + "_" + idx)
	}
}

// sanitizeName makes s usable as a file name: compatibility normalized,
// whitespace turned into underscores, everything but letters, digits, marks,
// '-', '_' and '.' removed.
func sanitizeName(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '-', r == '_', r == '.':
			if b.Len()+len(string(r)) > maxNameBytes {
				return finishName(b.String())
			}
			b.WriteRune(r)
		}
	}
	return finishName(b.String())
}

func finishName(s string) string {
	s = strings.Trim(s, ".")
	if s == "" {
		return "_"
	}
	return s
}

// artifact is one file of an emitted sample.
type artifact struct {
	name  string
	write func(w io.Writer) error
}

// artifacts lists the files res produces, in write order.
func artifacts(res *Result) ([]artifact, error) {
	ext := res.ext
	if ext == "" {
		ext = "jpg"
	}
	out := []artifact{{
		name:  res.Name + "." + ext,
		write: func(w io.Writer) error { return imgutil.Encode(w, res.Image, ext) },
	}}

	if res.output.Mask && res.Mask != nil {
		encoded, err := res.Mask.Image()
		if err != nil {
			return nil, err
		}
		out = append(out, artifact{
			name:  res.Name + "_mask.png",
			write: func(w io.Writer) error { return imgutil.Encode(w, encoded, "png") },
		})
	}

	switch res.output.Boxes {
	case BoxesLines:
		out = append(out, artifact{
			name:  res.Name + "_boxes.txt",
			write: func(w io.Writer) error { return WriteBoxes(w, res.Boxes) },
		})
	case BoxesChars:
		height := res.Image.Bounds().Dy()
		out = append(out,
			artifact{
				name:  res.Name + ".box",
				write: func(w io.Writer) error { return WriteTesseractBoxes(w, res.Units, res.Boxes, height) },
			},
			artifact{
				name:  res.Name + ".gt.txt",
				write: func(w io.Writer) error { return writeString(w, res.Text) },
			})
	}
	return out, nil
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// Emit writes the artifacts of an accepted result into dir and returns their
// paths. Every file is first written under a temporary name; the final names
// appear only once all of them have been encoded. On failure no artifact is
// left behind.
func Emit(res *Result, dir string) ([]string, error) {
	if res == nil {
		return nil, errors.New("nothing to emit")
	}
	if !res.Outcome.Accepted {
		return nil, ErrRejected
	}
	if res.Image == nil || res.Name == "" {
		return nil, errors.New("result has no image or name")
	}

	files, err := artifacts(res)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}

	for _, a := range files {
		tmp, err := writeTemp(dir, a)
		if tmp != "" {
			temps = append(temps, tmp)
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to write %s: %w", a.name, err)
		}
	}

	paths := make([]string, 0, len(files))
	for i, a := range files {
		final := filepath.Join(dir, a.name)
		if err := os.Rename(temps[i], final); err != nil {
			for _, p := range paths {
				os.Remove(p)
			}
			temps = temps[i:]
			cleanup()
			return nil, fmt.Errorf("failed to rename %s: %w", a.name, err)
		}
		paths = append(paths, final)
	}
	return paths, nil
}

// writeTemp writes a into a new temporary file in dir and returns its path.
// The path is returned even on failure so the caller can remove it.
func writeTemp(dir string, a artifact) (string, error) {
	f, err := os.CreateTemp(dir, "."+a.name+".tmp-*")
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	if err := a.write(w); err != nil {
		f.Close()
		return f.Name(), err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return f.Name(), err
	}
	return f.Name(), f.Close()
}

// WriteBoxes writes one "x1 y1 x2 y2" line per box, top-left origin.
func WriteBoxes(w io.Writer, boxes []mask.Box) error {
	for _, b := range boxes {
		if _, err := fmt.Fprintf(w, "%d %d %d %d\n", b.X1, b.Y1, b.X2, b.Y2); err != nil {
			return err
		}
	}
	return nil
}

// WriteTesseractBoxes writes the tesseract box file of a sample: one
// "<unit> x1 y1 x2 y2 0" line per box, with y measured from the bottom of
// an image of the given height. Boxes are matched to units by ID.
func WriteTesseractBoxes(w io.Writer, units []glyph.Unit, boxes []mask.Box, height int) error {
	text := make(map[uint32]string, len(units))
	for _, u := range units {
		text[u.ID] = u.Text
	}
	for _, b := range boxes {
		t, ok := text[b.ID]
		if !ok || strings.TrimSpace(t) == "" {
			continue
		}
		f := b.FlipY(height)
		if _, err := fmt.Fprintf(w, "%s %d %d %d %d 0\n", t, f.X1, f.Y1, f.X2, f.Y2); err != nil {
			return err
		}
	}
	return nil
}
