package config

import (
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultMargin    = 2
)

// Config is the complete application configuration.
type Config struct {
	Brush  BrushConfig  `toml:"brush" yaml:"brush"`
	UI     UIConfig     `toml:"ui" yaml:"ui"`
	Link   LinkConfig   `toml:"link" yaml:"link"`
	Plugin PluginConfig `toml:"plugin" yaml:"plugin"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// BrushConfig describes the domain and the initial value.
type BrushConfig struct {
	Range [2]float64 `toml:"range" yaml:"range"`
	Value [2]float64 `toml:"value" yaml:"value"`
	// Step of 0 disables stepping.
	Step  float64   `toml:"step" yaml:"step"`
	Marks []float64 `toml:"marks" yaml:"marks"`
	// Point selects a single value instead of an interval.
	Point bool `toml:"point" yaml:"point"`
}

// UIConfig holds terminal layout and colours.
type UIConfig struct {
	Colors ColorConfig `toml:"colors" yaml:"colors"`
	// Margin is the number of blank columns left and right of the track.
	Margin int `toml:"margin" yaml:"margin"`
}

// ColorConfig holds hex colours for the track.
type ColorConfig struct {
	Track     string `toml:"track" yaml:"track"`
	Range     string `toml:"range" yaml:"range"`
	Selection string `toml:"selection" yaml:"selection"`
}

// LinkConfig configures the remote control server.
type LinkConfig struct {
	// Listen is the HTTP address. Empty disables the server.
	Listen         string   `toml:"listen" yaml:"listen"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// PluginConfig configures scripting.
type PluginConfig struct {
	// SnapScript is a Lua file defining normalize().
	SnapScript string `toml:"snap_script" yaml:"snap_script"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	// File receives log output. Empty discards logs, since the terminal
	// belongs to the UI.
	File string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Brush: BrushConfig{
			Range: [2]float64{0, 100},
			Value: [2]float64{25, 75},
			Step:  1,
		},
		UI: UIConfig{
			Colors: ColorConfig{
				Track:     "#3A414C",
				Range:     "#D3D8E0",
				Selection: "#1FBAD6",
			},
			Margin: DefaultMargin,
		},
		Link: LinkConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.Brush.Marks = slices.Clone(c.Brush.Marks)
	c.Link.AllowedOrigins = slices.Clone(c.Link.AllowedOrigins)
	return c
}

// Validate checks every section and returns all problems joined.
// Each problem is a *ValidationError.
func (c Config) Validate() error {
	var errs []error
	add := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	b := c.Brush
	switch {
	case !finite(b.Range[0]) || !finite(b.Range[1]):
		add("brush.range", "must be finite", b.Range)
	case b.Range[1] < b.Range[0]:
		add("brush.range", "max must not be below min", b.Range)
	}
	switch {
	case !finite(b.Value[0]) || !finite(b.Value[1]):
		add("brush.value", "must be finite", b.Value)
	case !b.Point && b.Value[1] < b.Value[0]:
		add("brush.value", "end must not be below start", b.Value)
	}
	if !finite(b.Step) || b.Step < 0 {
		add("brush.step", "must be a non-negative number", b.Step)
	}
	for _, m := range b.Marks {
		if !finite(m) {
			add("brush.marks", "must be finite", b.Marks)
			break
		}
	}

	if c.UI.Margin < 0 {
		add("ui.margin", "must not be negative", c.UI.Margin)
	}
	for _, col := range []struct{ path, hex string }{
		{"ui.colors.track", c.UI.Colors.Track},
		{"ui.colors.range", c.UI.Colors.Range},
		{"ui.colors.selection", c.UI.Colors.Selection},
	} {
		if _, err := colorful.Hex(col.hex); err != nil {
			add(col.path, "must be a #rrggbb colour", col.hex)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Log.Format)) {
		add("log.format", "must be text or json", c.Log.Format)
	}

	return errors.Join(errs...)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
