package animation

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the hero animation. All divisions performed by
// the engine are guarded by the constraints checked in Validate, so a Config
// must be validated once at load time and never at call time.
type Config struct {
	Distance     float64          `yaml:"distance" json:"distance" validate:"gt=0"`
	HeaderHeight float64          `yaml:"headerHeight" json:"headerHeight" validate:"gte=0"`
	Logo         LogoConfig       `yaml:"logo" json:"logo"`
	Separation   SeparationConfig `yaml:"separation" json:"separation"`
	Opacity      OpacityConfig    `yaml:"opacity" json:"opacity"`
	Content      ContentConfig    `yaml:"content" json:"content"`
	Filter       FilterConfig     `yaml:"filter" json:"filter"`
}

// LogoConfig is the wordmark scale at the start and end of the animation.
type LogoConfig struct {
	StartScale float64 `yaml:"startScale" json:"startScale" validate:"gt=0"`
	EndScale   float64 `yaml:"endScale" json:"endScale" validate:"gt=0"`
}

// SeparationConfig is the gap between glyph and label, in vw.
type SeparationConfig struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// OpacityConfig holds the thresholds of the fade ramps.
type OpacityConfig struct {
	SquareStart  float64 `yaml:"squareStart" json:"squareStart" validate:"gte=0,lte=1"`
	SquareRange  float64 `yaml:"squareRange" json:"squareRange" validate:"gt=0,lte=1"`
	HeaderStart  float64 `yaml:"headerStart" json:"headerStart" validate:"gte=0,lt=1"`
	ContentStart float64 `yaml:"contentStart" json:"contentStart" validate:"gt=0,lt=1"`
}

// ContentConfig drives the slide-in of the content section.
type ContentConfig struct {
	OffsetPx float64 `yaml:"offsetPx" json:"offsetPx" validate:"gte=0"`
	StartPx  float64 `yaml:"startPx" json:"startPx" validate:"gte=0"`
	// Rate is the number of scrolled pixels per pixel of slide.
	Rate float64 `yaml:"rate" json:"rate" validate:"gt=0"`
}

// FilterConfig is the CSS filter applied to the glyph once the square shows.
type FilterConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"gte=0,lte=1"`
	Value     string  `yaml:"value" json:"value" validate:"required"`
}

// DefaultConfig returns the production tuning of the landing page.
func DefaultConfig() Config {
	return Config{
		Distance:     800,
		HeaderHeight: 90,
		Logo:         LogoConfig{StartScale: 0.75, EndScale: 0.39},
		Separation:   SeparationConfig{Start: 0.4, End: 0},
		Opacity: OpacityConfig{
			SquareStart:  0.85,
			SquareRange:  0.15,
			HeaderStart:  0.75,
			ContentStart: 0.5,
		},
		Content: ContentConfig{OffsetPx: 50, StartPx: 300, Rate: 6},
		Filter:  FilterConfig{Threshold: 0.4, Value: "invert(1) brightness(2)"},
	}
}

// Validate rejects configurations that would make any mapping divide by zero
// or leave its documented range.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid animation config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
// An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read animation config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse animation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
