// Package config reads generation settings from YAML files, .env files and
// the environment, and turns them into pipeline requests.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/anhlbt/TextRecognitionDataGenerator/internal/background"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/glyph"
	imgutil "github.com/anhlbt/TextRecognitionDataGenerator/internal/imaging"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/pipeline"
	"github.com/anhlbt/TextRecognitionDataGenerator/internal/transform"
)

// Environment variables overriding file values.
const (
	EnvFont          = "TRDG_FONT"
	EnvBackgroundDir = "TRDG_BACKGROUND_DIR"
	EnvOutputDir     = "TRDG_OUTPUT_DIR"
	EnvLogLevel      = "TRDG_LOG_LEVEL"
)

// Margins are in pixels.
type Margins struct {
	Top    int `yaml:"top" json:"top"`
	Left   int `yaml:"left" json:"left"`
	Bottom int `yaml:"bottom" json:"bottom"`
	Right  int `yaml:"right" json:"right"`
}

// Output selects the files written for a sample.
type Output struct {
	Mask       bool   `yaml:"mask" json:"mask"`
	Boxes      string `yaml:"boxes" json:"boxes"`
	Extension  string `yaml:"extension" json:"extension"`
	NameFormat string `yaml:"name_format" json:"name_format"`
	Index      int    `yaml:"index" json:"index"`
	Dir        string `yaml:"dir" json:"dir"`
}

// File is the serialized form of a request. Enumerations and colors are
// kept as strings until Request converts them.
type File struct {
	Text     string  `yaml:"text" json:"text"`
	Font     string  `yaml:"font" json:"font"`
	FontSize float64 `yaml:"font_size" json:"font_size"`

	// TextColor is "#rrggbb" or "#rrggbb,#rrggbb" for a random color in
	// that range.
	TextColor   string `yaml:"text_color" json:"text_color"`
	StrokeColor string `yaml:"stroke_color" json:"stroke_color"`
	StrokeWidth int    `yaml:"stroke_width" json:"stroke_width"`

	Orientation      string  `yaml:"orientation" json:"orientation"`
	SpaceWidth       float64 `yaml:"space_width" json:"space_width"`
	CharacterSpacing int     `yaml:"character_spacing" json:"character_spacing"`
	WordSplit        bool    `yaml:"word_split" json:"word_split"`
	Fit              bool    `yaml:"fit" json:"fit"`
	DrawBoxesPercent int     `yaml:"draw_boxes_percent" json:"draw_boxes_percent"`

	Alignment string         `yaml:"alignment" json:"alignment"`
	Margins   Margins        `yaml:"margins" json:"margins"`
	Skew      transform.Skew `yaml:"skew" json:"skew"`
	Blur      pipeline.Blur  `yaml:"blur" json:"blur"`

	Background     string `yaml:"background" json:"background"`
	BackgroundDir  string `yaml:"background_dir" json:"background_dir"`
	Distortion     string `yaml:"distortion" json:"distortion"`
	DistortionAxis string `yaml:"distortion_axis" json:"distortion_axis"`

	Size      int    `yaml:"size" json:"size"`
	Width     int    `yaml:"width" json:"width"`
	ImageMode string `yaml:"image_mode" json:"image_mode"`
	Output    Output `yaml:"output" json:"output"`

	Handwritten bool `yaml:"handwritten" json:"handwritten"`

	// Seed initializes the random source; 0 picks one from the clock.
	Seed int64 `yaml:"seed" json:"seed"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the settings used for every key a file leaves out.
func Default() File {
	return File{
		TextColor:   "#282828",
		StrokeColor: "#282828",
		Orientation: "horizontal",
		SpaceWidth:  1.0,
		Alignment:   "left",
		Margins:     Margins{Top: 5, Left: 5, Bottom: 5, Right: 5},
		Background:  "gaussian",
		Distortion:  "none",
		Size:        32,
		ImageMode:   "RGB",
		Output: Output{
			Boxes:      "none",
			Extension:  "jpg",
			NameFormat: "text_index",
			Dir:        "out",
		},
		LogLevel: "info",
	}
}

// LoadDotEnv loads path (".env" when empty) into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path on top of Default and then applies the
// environment. An empty path yields the defaults plus the environment.
func Load(path string) (File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	f.ApplyEnv()
	return f, nil
}

// ApplyEnv overrides f with the TRDG_* environment variables that are set.
func (f *File) ApplyEnv() {
	if v := os.Getenv(EnvFont); v != "" {
		f.Font = v
	}
	if v := os.Getenv(EnvBackgroundDir); v != "" {
		f.BackgroundDir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		f.Output.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		f.LogLevel = v
	}
}

// Request validates f and converts it into a pipeline request. cache is
// shared by image backgrounds and may be nil.
func (f File) Request(cache *imgutil.ImageCache) (pipeline.RenderRequest, error) {
	var errs []error
	collect := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	textColor, err := imgutil.ParseColorSpec(f.TextColor)
	collect("text_color", err)
	strokeColor, err := imgutil.ParseColorSpec(f.StrokeColor)
	collect("stroke_color", err)
	orientation, err := glyph.ParseOrientation(f.Orientation)
	collect("orientation", err)
	alignment, err := pipeline.ParseAlignment(f.Alignment)
	collect("alignment", err)
	bgKind, err := background.ParseKind(f.Background)
	collect("background", err)
	distortion, err := transform.ParseKind(f.Distortion)
	collect("distortion", err)
	axis, err := transform.ParseAxis(f.DistortionAxis)
	collect("distortion_axis", err)
	format, err := pipeline.ParsePixelFormat(f.ImageMode)
	collect("image_mode", err)
	boxes, err := pipeline.ParseBoxFormat(f.Output.Boxes)
	collect("output.boxes", err)
	naming, err := pipeline.ParseNameFormat(f.Output.NameFormat)
	collect("output.name_format", err)
	if err := errors.Join(errs...); err != nil {
		return pipeline.RenderRequest{}, fmt.Errorf("%w: %w", pipeline.ErrInvalidRequest, err)
	}

	bg, err := background.New(bgKind, f.BackgroundDir, cache)
	if err != nil {
		return pipeline.RenderRequest{}, err
	}

	var font *glyph.OpenType
	if f.Font == "" {
		font, err = glyph.DefaultFont()
	} else {
		font, err = glyph.LoadFont(f.Font)
	}
	if err != nil {
		return pipeline.RenderRequest{}, fmt.Errorf("%w: %w", glyph.ErrNoFont, err)
	}

	fontSize := f.FontSize
	if fontSize <= 0 {
		fontSize = float64(f.Size)
	}

	return pipeline.RenderRequest{
		Text:             f.Text,
		Font:             font,
		FontSize:         fontSize,
		TextColor:        textColor,
		StrokeColor:      strokeColor,
		StrokeWidth:      f.StrokeWidth,
		Orientation:      orientation,
		SpaceWidth:       f.SpaceWidth,
		CharacterSpacing: f.CharacterSpacing,
		WordSplit:        f.WordSplit,
		Fit:              f.Fit,
		DrawBoxesPercent: f.DrawBoxesPercent,
		Alignment:        alignment,
		Margins: transform.Margins{
			Top:    f.Margins.Top,
			Left:   f.Margins.Left,
			Bottom: f.Margins.Bottom,
			Right:  f.Margins.Right,
		},
		Skew:        f.Skew,
		Blur:        f.Blur,
		Background:  bg,
		Distortion:  transform.Distortion{Kind: distortion, Axis: axis},
		Size:        f.Size,
		Width:       f.Width,
		PixelFormat: format,
		Output: pipeline.Output{
			Mask:       f.Output.Mask,
			Boxes:      boxes,
			Extension:  strings.TrimPrefix(f.Output.Extension, "."),
			NameFormat: naming,
			Index:      f.Output.Index,
			Dir:        f.Output.Dir,
		},
		Handwritten: f.Handwritten,
	}, nil
}
