package imaging

import (
	"image"
	"image/color"
)

// IntensityStats summarizes the mean intensity of a set of pixels.
type IntensityStats struct {
	// Mean is the average of (R+G+B)/3 over the counted pixels, 0-255 scale.
	Mean float64 `json:"mean"`

	// Pixels is the number of pixels that contributed to Mean.
	Pixels int `json:"pixels"`
}

// MeanIntensity averages (R+G+B)/3 over every pixel of img.
//
// Colors are read non-premultiplied, so a translucent pixel contributes its
// own color rather than a darkened one.
func MeanIntensity(img image.Image) IntensityStats {
	return MaskedMeanIntensity(img, nil)
}

// MaskedMeanIntensity averages (R+G+B)/3 over the pixels of img for which
// include returns true. Coordinates passed to include are relative to
// img.Bounds().Min. A nil include counts every pixel.
//
// When no pixel is included the result has Pixels == 0 and Mean == 0.
func MaskedMeanIntensity(img image.Image, include func(x, y int) bool) IntensityStats {
	bounds := img.Bounds()
	var sum float64
	n := 0

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if include != nil && !include(x, y) {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			sum += Intensity(c)
			n++
		}
	}

	if n == 0 {
		return IntensityStats{}
	}
	return IntensityStats{Mean: sum / float64(n), Pixels: n}
}

// InkBounds returns the smallest rectangle containing every pixel of img with
// non-zero alpha, relative to img.Bounds().Min. ok is false when img has no
// such pixel.
func InkBounds(img *image.NRGBA) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	minX, minY := b.Dx(), b.Dy()
	maxX, maxY := -1, -1

	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// absDiff returns |a-b|.
func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Contrast returns the absolute difference between two mean intensities.
func Contrast(a, b IntensityStats) float64 {
	return absDiff(a.Mean, b.Mean)
}
