// Package background synthesizes the textures text is composited onto.
//
// Every strategy implements Generator and draws all of its randomness from
// the *rand.Rand it is handed, so a background is a pure function of the
// random source state. Results are opaque *image.NRGBA canvases, the same
// pixel family as the glyph canvases.
package background

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
)

// ErrNoImages is returned when an image directory has no eligible files.
var ErrNoImages = errors.New("no background images found")

// Generator produces a background of exactly width x height pixels.
type Generator interface {
	Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error)
}

func checkSize(height, width int) error {
	if height <= 0 || width <= 0 {
		return fmt.Errorf("invalid background size %dx%d", width, height)
	}
	return nil
}

func gray(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 0xff}
}

func setGray(img *image.NRGBA, x, y int, v uint8) {
	o := img.PixOffset(x, y)
	img.Pix[o] = v
	img.Pix[o+1] = v
	img.Pix[o+2] = v
	img.Pix[o+3] = 0xff
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

// Plain is a solid white background.
type Plain struct{}

func (Plain) Generate(height, width int, _ *rand.Rand) (*image.NRGBA, error) {
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	return imaging.New(width, height, gray(255)), nil
}

// GaussianNoise imitates paper: every pixel is drawn from one normal
// distribution with mean in [190,240] and standard deviation in [0,50].
type GaussianNoise struct{}

func (GaussianNoise) Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error) {
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	mean := float64(190 + rng.Intn(51))
	std := float64(rng.Intn(51))

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			setGray(img, x, y, clampByte(mean+std*rng.NormFloat64()))
		}
	}
	return img, nil
}

// SaltPepper is a white canvas with a random fraction (up to 2%) of pixels
// forced to white (salt) or black (pepper).
type SaltPepper struct{}

func (SaltPepper) Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error) {
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	density := rng.Float64() * 0.02
	salt := rng.Float64()

	img := imaging.New(width, height, gray(255))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if rng.Float64() >= density {
				continue
			}
			if rng.Float64() < salt {
				setGray(img, x, y, 255)
			} else {
				setGray(img, x, y, 0)
			}
		}
	}
	return img, nil
}

// Quasicrystal sums N rotated plane waves sharing one frequency and phase.
//
// Cost is O(height*width*N). Rows are computed in parallel bands once all
// random parameters have been drawn, so the output does not depend on
// scheduling.
type Quasicrystal struct {
	// Workers bounds the number of concurrent bands; 0 means GOMAXPROCS.
	Workers int
}

func (q Quasicrystal) Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error) {
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	frequency := rng.Float64()*30 + 20
	phase := rng.Float64() * 2 * math.Pi
	rotations := 10 + rng.Intn(11)

	sin := make([]float64, rotations)
	cos := make([]float64, rotations)
	for i := range sin {
		sin[i], cos[i] = math.Sincos(float64(i) * 2 * math.Pi / float64(rotations))
	}

	// Both axes span [-2π, 2π]. x follows the row, y the column.
	axis := func(k, n int) float64 {
		if n <= 1 {
			return -2 * math.Pi
		}
		return float64(k)/float64(n-1)*4*math.Pi - 2*math.Pi
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	workers := q.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := (height + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < height; start += band {
		start, end := start, min(start+band, height)
		g.Go(func() error {
			for row := start; row < end; row++ {
				x := axis(row, height)
				for col := 0; col < width; col++ {
					y := axis(col, width)
					z := 0.0
					for i := 0; i < rotations; i++ {
						z += math.Cos((x*sin[i]+y*cos[i])*frequency + phase)
					}
					setGray(img, col, row, clampByte(255-math.Round(255*z/float64(rotations))))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// ImageCrop cuts a random window out of a random image from Dir.
//
// Images narrower or shorter than the window are first upscaled along that
// axis, keeping their aspect ratio. Cache is optional.
type ImageCrop struct {
	Dir   string
	Cache *imgutil.ImageCache
}

func (c ImageCrop) Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error) {
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	paths, err := imgutil.ListImages(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImages, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, c.Dir)
	}
	path := paths[rng.Intn(len(paths))]

	var pic image.Image
	if c.Cache != nil {
		pic, err = c.Cache.Load(path)
	} else {
		pic, err = imgutil.LoadImage(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load background %s: %w", path, err)
	}

	if pic.Bounds().Dx() < width {
		pic = imaging.Resize(pic, width, 0, imaging.Lanczos)
	}
	if pic.Bounds().Dy() < height {
		pic = imaging.Resize(pic, 0, height, imaging.Lanczos)
	}

	b := pic.Bounds()
	x, y := 0, 0
	if b.Dx() > width {
		x = rng.Intn(b.Dx() - width + 1)
	}
	if b.Dy() > height {
		y = rng.Intn(b.Dy() - height + 1)
	}
	return imaging.Crop(pic, image.Rect(x, y, x+width, y+height).Add(b.Min)), nil
}

// Random picks one of the other strategies uniformly on every call. ImageCrop
// only takes part when Dir is set.
type Random struct {
	Dir   string
	Cache *imgutil.ImageCache
}

func (r Random) Generate(height, width int, rng *rand.Rand) (*image.NRGBA, error) {
	choices := []Generator{SaltPepper{}, Quasicrystal{}, Plain{}, GaussianNoise{}}
	if r.Dir != "" {
		choices = append(choices, ImageCrop{Dir: r.Dir, Cache: r.Cache})
	}
	return choices[rng.Intn(len(choices))].Generate(height, width, rng)
}

// Kind names a strategy in configuration. The numeric values follow the
// long-standing command line codes.
type Kind int

const (
	KindGaussianNoise Kind = iota
	KindPlain
	KindQuasicrystal
	KindImage
	KindSaltPepper
	KindRandom
)

var kindNames = map[Kind]string{
	KindGaussianNoise: "gaussian",
	KindPlain:         "plain",
	KindQuasicrystal:  "quasicrystal",
	KindImage:         "image",
	KindSaltPepper:    "saltpepper",
	KindRandom:        "random",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts a strategy name or its numeric code.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if s == name || s == fmt.Sprint(int(k)) {
			return k, nil
		}
	}
	switch s {
	case "", "gaussian_noise", "noise":
		return KindGaussianNoise, nil
	case "white", "plain_white":
		return KindPlain, nil
	case "salt_pepper", "salt_and_pepper":
		return KindSaltPepper, nil
	}
	return 0, fmt.Errorf("unknown background kind %q", s)
}

// New builds the generator for kind. dir and cache are used by the image
// based strategies only.
func New(kind Kind, dir string, cache *imgutil.ImageCache) (Generator, error) {
	switch kind {
	case KindGaussianNoise:
		return GaussianNoise{}, nil
	case KindPlain:
		return Plain{}, nil
	case KindQuasicrystal:
		return Quasicrystal{}, nil
	case KindImage:
		if dir == "" {
			return nil, fmt.Errorf("%w: image background needs a directory", ErrNoImages)
		}
		return ImageCrop{Dir: dir, Cache: cache}, nil
	case KindSaltPepper:
		return SaltPepper{}, nil
	case KindRandom:
		return Random{Dir: dir, Cache: cache}, nil
	default:
		return nil, fmt.Errorf("unknown background kind %d", int(kind))
	}
}
