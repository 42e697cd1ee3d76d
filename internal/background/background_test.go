package background

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func opaqueGray(t *testing.T, img *image.NRGBA) []uint8 {
	t.Helper()
	values := make([]uint8, 0, len(img.Pix)/4)
	for i := 0; i < len(img.Pix); i += 4 {
		require.Equal(t, uint8(0xff), img.Pix[i+3], "pixel %d not opaque", i/4)
		require.Equal(t, img.Pix[i], img.Pix[i+1])
		require.Equal(t, img.Pix[i], img.Pix[i+2])
		values = append(values, img.Pix[i])
	}
	return values
}

func TestGenerators_Size(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "bg.png", 8, 8)

	generators := map[string]Generator{
		"plain":        Plain{},
		"gaussian":     GaussianNoise{},
		"saltpepper":   SaltPepper{},
		"quasicrystal": Quasicrystal{},
		"image":        ImageCrop{Dir: dir},
		"random":       Random{Dir: dir},
	}

	for name, g := range generators {
		t.Run(name, func(t *testing.T) {
			img, err := g.Generate(17, 43, rand.New(rand.NewSource(5)))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 43, 17), img.Bounds())

			_, err = g.Generate(0, 10, rand.New(rand.NewSource(5)))
			assert.Error(t, err)
		})
	}
}

func TestPlain(t *testing.T) {
	img, err := Plain{}.Generate(4, 6, nil)
	require.NoError(t, err)
	for _, v := range opaqueGray(t, img) {
		assert.Equal(t, uint8(255), v)
	}
}

func TestGaussianNoise(t *testing.T) {
	img, err := GaussianNoise{}.Generate(60, 80, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	sum := 0
	values := opaqueGray(t, img)
	for _, v := range values {
		sum += int(v)
	}
	mean := float64(sum) / float64(len(values))
	assert.InDelta(t, 215, mean, 40)

	again, err := GaussianNoise{}.Generate(60, 80, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	assert.Equal(t, img.Pix, again.Pix)
}

func TestSaltPepper(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		img, err := SaltPepper{}.Generate(50, 50, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		black := 0
		for _, v := range opaqueGray(t, img) {
			require.True(t, v == 0 || v == 255, "unexpected value %d", v)
			if v == 0 {
				black++
			}
		}
		assert.LessOrEqual(t, black, 50*50/20)
	}
}

func TestQuasicrystal_IndependentOfWorkers(t *testing.T) {
	one, err := Quasicrystal{Workers: 1}.Generate(31, 47, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	many, err := Quasicrystal{Workers: 7}.Generate(31, 47, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	assert.Equal(t, one.Pix, many.Pix)
	opaqueGray(t, one)
}

func TestQuasicrystal_SinglePixel(t *testing.T) {
	img, err := Quasicrystal{}.Generate(1, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
}

func TestImageCrop_Upscales(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "small.png", 10, 5)
	cache := imgutil.NewImageCache()

	tests := []struct{ h, w int }{
		{20, 40},
		{30, 40},
		{5, 10},
		{3, 4},
	}
	for _, tt := range tests {
		img, err := ImageCrop{Dir: dir, Cache: cache}.Generate(tt.h, tt.w, rand.New(rand.NewSource(2)))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, tt.w, tt.h), img.Bounds())
	}
	assert.Equal(t, 1, cache.Len())
}

func TestImageCrop_NoImages(t *testing.T) {
	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "notes.txt"), []byte("x"), 0o644))

	_, err := ImageCrop{Dir: empty}.Generate(10, 10, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrNoImages))

	_, err = ImageCrop{Dir: filepath.Join(empty, "missing")}.Generate(10, 10, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrNoImages))
}

func TestRandom_WithoutDirNeverNeedsImages(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 40; i++ {
		_, err := Random{}.Generate(8, 8, rng)
		require.NoError(t, err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind Kind
		dir  string
		want Generator
	}{
		{KindGaussianNoise, "", GaussianNoise{}},
		{KindPlain, "", Plain{}},
		{KindQuasicrystal, "", Quasicrystal{}},
		{KindImage, "/bg", ImageCrop{Dir: "/bg"}},
		{KindSaltPepper, "", SaltPepper{}},
		{KindRandom, "/bg", Random{Dir: "/bg"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			g, err := New(tt.kind, tt.dir, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}

	_, err := New(KindImage, "", nil)
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = New(Kind(42), "", nil)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindGaussianNoise, false},
		{"0", KindGaussianNoise, false},
		{"plain", KindPlain, false},
		{"1", KindPlain, false},
		{"Quasicrystal", KindQuasicrystal, false},
		{"3", KindImage, false},
		{"salt_pepper", KindSaltPepper, false},
		{"random", KindRandom, false},
		{"checkerboard", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
