// Package config loads viewer and layout settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textweave/layout"
	"github.com/dshills/textweave/typeset"
)

// Validation errors.
var (
	ErrBadBreakStrategy = errors.New("config: break_strategy must be \"word\" or \"character\"")
	ErrBadMultiplier    = errors.New("config: line_height_multiplier must be positive")
	ErrBadTabWidth      = errors.New("config: tab_width must be positive")
	ErrBadOverscan      = errors.New("config: overscan must not be negative")
)

// Settings holds every tunable of the layout engine and viewer.
type Settings struct {
	// Wrap enables soft wrapping at the viewport width.
	Wrap bool `toml:"wrap"`

	// BreakStrategy is "word" or "character".
	BreakStrategy string `toml:"break_strategy"`

	// TabWidth is the number of cells a tab advances to.
	TabWidth int `toml:"tab_width"`

	// LineHeightMultiplier scales every line's layout height.
	LineHeightMultiplier float64 `toml:"line_height_multiplier"`

	// Overscan pads layout windows vertically, in layout units.
	Overscan float64 `toml:"overscan"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		Wrap:                 true,
		BreakStrategy:        "word",
		TabWidth:             4,
		LineHeightMultiplier: 1.0,
		Overscan:             100,
	}
}

// Load reads settings from the TOML file at path. A missing file returns
// the defaults without error; a malformed or invalid file returns an
// error wrapping the cause.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadFromReader reads settings from an open TOML stream.
func LoadFromReader(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field against its allowed domain.
func (s Settings) Validate() error {
	switch s.BreakStrategy {
	case "word", "character":
	default:
		return fmt.Errorf("%w, got %q", ErrBadBreakStrategy, s.BreakStrategy)
	}
	if s.LineHeightMultiplier <= 0 {
		return fmt.Errorf("%w, got %v", ErrBadMultiplier, s.LineHeightMultiplier)
	}
	if s.TabWidth <= 0 {
		return fmt.Errorf("%w, got %d", ErrBadTabWidth, s.TabWidth)
	}
	if s.Overscan < 0 {
		return fmt.Errorf("%w, got %v", ErrBadOverscan, s.Overscan)
	}
	return nil
}

// Strategy maps the configured name to a typesetter strategy.
func (s Settings) Strategy() typeset.BreakStrategy {
	if s.BreakStrategy == "character" {
		return typeset.BreakCharacter
	}
	return typeset.BreakWord
}

// LayoutOptions converts the settings to layout manager options. The wrap
// width comes from the viewport, so Wrap is applied by the caller.
func (s Settings) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithBreakStrategy(s.Strategy()),
		layout.WithLineHeightMultiplier(s.LineHeightMultiplier),
		layout.WithOverscan(s.Overscan),
	}
}
