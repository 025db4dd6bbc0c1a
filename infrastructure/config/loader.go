// Package config loads planner configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/gridplan/domain/config"
)

// Loader loads planner configuration from files.
type Loader struct {
	// ExpandEnv enables ${VAR} expansion in file contents.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Overrides applies GRIDPLAN_* variables after parsing.
	Overrides bool
	// Validate enables configuration validation.
	Validate bool

	lookup func(string) (string, bool)
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		Overrides: true,
		Validate:  true,
		lookup:    os.LookupEnv,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithEnvOverrides enables or disables GRIDPLAN_* overrides.
func WithEnvOverrides(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Overrides = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// WithLookup replaces os.LookupEnv for expansion and overrides.
func WithLookup(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookup = lookup
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPaths lists the files Resolve tries when no path is given.
func DefaultPaths() []string {
	paths := []string{"gridplan.yaml", "gridplan.yml", "gridplan.json"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "gridplan", "config.yaml"))
	}
	return paths
}

// Resolve loads an explicit path, or the first default path that exists, or
// built-in defaults. It returns the file actually used ("" for defaults).
func (l *Loader) Resolve(path string) (*config.PlannerConfig, string, error) {
	if path != "" {
		cfg, err := l.LoadFile(path)
		return cfg, path, err
	}

	for _, candidate := range DefaultPaths() {
		cfg, err := l.LoadFile(candidate)
		if errors.Is(err, config.ErrConfigNotFound) {
			continue
		}
		return cfg, candidate, err
	}

	cfg, err := l.finish(config.Default())
	return cfg, "", err
}

// LoadFile loads configuration from a file path.
func (l *Loader) LoadFile(path string) (*config.PlannerConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	var format Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// Load loads configuration from a reader. Fields absent from the input keep
// their default values.
func (l *Loader) Load(r io.Reader, format Format) (*config.PlannerConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		expander := &envExpander{strict: l.StrictEnv, lookup: l.lookup}
		expanded, err := expander.Expand(string(data))
		if err != nil {
			return nil, err
		}
		data = []byte(expanded)
	}

	cfg := config.Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	return l.finish(cfg)
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.PlannerConfig, error) {
	return l.Load(strings.NewReader(content), format)
}

func (l *Loader) finish(cfg *config.PlannerConfig) (*config.PlannerConfig, error) {
	if l.Overrides {
		ApplyEnvOverrides(cfg, l.lookup)
	}
	if l.Validate {
		if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %v", config.ErrValidationFailed, errs)
		}
	}
	return cfg, nil
}
