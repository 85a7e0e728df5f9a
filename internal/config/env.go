package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. RANGEBRUSH_STEP.
const EnvPrefix = "RANGEBRUSH"

// EnvConfig holds environment overrides. Nil pointers and nil slices mean
// the variable is unset.
type EnvConfig struct {
	// Range is "min,max".
	// Env: RANGEBRUSH_RANGE
	Range []float64 `envconfig:"RANGE"`

	// Value is "v0,v1".
	// Env: RANGEBRUSH_VALUE
	Value []float64 `envconfig:"VALUE"`

	// Env: RANGEBRUSH_STEP
	Step *float64 `envconfig:"STEP"`

	// Marks is a comma-separated list.
	// Env: RANGEBRUSH_MARKS
	Marks []float64 `envconfig:"MARKS"`

	// Env: RANGEBRUSH_POINT
	Point *bool `envconfig:"POINT"`

	// Env: RANGEBRUSH_MARGIN
	Margin *int `envconfig:"MARGIN"`

	// Env: RANGEBRUSH_LISTEN
	Listen *string `envconfig:"LISTEN"`

	// Env: RANGEBRUSH_ALLOWED_ORIGINS
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// Env: RANGEBRUSH_SNAP_SCRIPT
	SnapScript *string `envconfig:"SNAP_SCRIPT"`

	// Env: RANGEBRUSH_LOG_LEVEL
	LogLevel *string `envconfig:"LOG_LEVEL"`

	// Env: RANGEBRUSH_LOG_FORMAT
	LogFormat *string `envconfig:"LOG_FORMAT"`

	// Env: RANGEBRUSH_LOG_FILE
	LogFile *string `envconfig:"LOG_FILE"`
}

// LoadFromEnv reads RANGEBRUSH_* variables.
func LoadFromEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return EnvConfig{}, err
	}
	return env, nil
}

// Apply overlays the set variables onto cfg.
func (e EnvConfig) Apply(cfg *Config) error {
	if e.Range != nil {
		if len(e.Range) != 2 {
			return &ValidationError{Path: EnvPrefix + "_RANGE", Message: "must be min,max", Value: e.Range}
		}
		cfg.Brush.Range = [2]float64{e.Range[0], e.Range[1]}
	}
	if e.Value != nil {
		switch len(e.Value) {
		case 1:
			cfg.Brush.Value = [2]float64{e.Value[0], e.Value[0]}
		case 2:
			cfg.Brush.Value = [2]float64{e.Value[0], e.Value[1]}
		default:
			return &ValidationError{Path: EnvPrefix + "_VALUE", Message: "must be v or v0,v1", Value: e.Value}
		}
	}
	if e.Step != nil {
		cfg.Brush.Step = *e.Step
	}
	if e.Marks != nil {
		cfg.Brush.Marks = e.Marks
	}
	if e.Point != nil {
		cfg.Brush.Point = *e.Point
	}
	if e.Margin != nil {
		cfg.UI.Margin = *e.Margin
	}
	if e.Listen != nil {
		cfg.Link.Listen = *e.Listen
	}
	if e.AllowedOrigins != nil {
		cfg.Link.AllowedOrigins = e.AllowedOrigins
	}
	if e.SnapScript != nil {
		cfg.Plugin.SnapScript = *e.SnapScript
	}
	if e.LogLevel != nil {
		cfg.Log.Level = *e.LogLevel
	}
	if e.LogFormat != nil {
		cfg.Log.Format = *e.LogFormat
	}
	if e.LogFile != nil {
		cfg.Log.File = *e.LogFile
	}
	return nil
}
