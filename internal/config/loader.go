package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load builds a validated Config from defaults, the file at path and the
// environment. An empty path skips the file layer.
func Load(path string) (Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load with a final overlay applied after the environment
// and before validation. A nil overlay is skipped.
func LoadWith(path string, overlay func(*Config)) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	env, err := LoadFromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := env.Apply(&cfg); err != nil {
		return Config{}, err
	}
	if overlay != nil {
		overlay(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a single file over the defaults without consulting the
// environment. The result is not validated.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Decode(path, data, cfg)
}

// Decode parses data into cfg using the format implied by name's
// extension. Keys absent from data keep their current values; unknown
// keys are rejected.
func Decode(name string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return decodeTOML(name, data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(name, data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func decodeTOML(name string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: name, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

func decodeYAML(name string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &ParseError{Path: name, Message: err.Error(), Err: err}
	}
	return nil
}
