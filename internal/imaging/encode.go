package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// EncodedImage contains an image encoded for transport over JSON.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNGBase64 encodes img as a base64 PNG.
func EncodePNGBase64(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Encode writes img to w in the format named by ext ("jpg", ".png", "tif"...).
func Encode(w io.Writer, img image.Image, ext string) error {
	if len(ext) > 0 && ext[0] != '.' {
		ext = "." + ext
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("unsupported image extension %q: %w", ext, err)
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// ValidExtension reports whether ext names an output format Encode supports.
func ValidExtension(ext string) bool {
	if len(ext) > 0 && ext[0] != '.' {
		ext = "." + ext
	}
	_, err := imaging.FormatFromExtension(ext)
	return err == nil
}
