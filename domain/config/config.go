// Package config provides domain models for planner configuration.
package config

import "time"

// PlannerConfig represents the complete planner configuration.
type PlannerConfig struct {
	// Algorithm is the strategy used when a command does not name one.
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	// Output controls how plans are printed.
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
	// Logging controls diagnostic logging on stderr.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Cache configures the plan cache.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// History configures run history.
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`
	// Telemetry configures tracing and metrics.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// OutputConfig controls plan rendering.
type OutputConfig struct {
	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	// Level is trace, debug, info, warn, or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is console or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// CacheConfig configures the plan cache.
type CacheConfig struct {
	// Backend is none, memory, badger, sqlite, or redis.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// TTL is how long cached plans stay valid. Zero keeps them forever.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	// Dir holds the badger directory and the sqlite file.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// KeyPrefix namespaces keys in shared backends.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
	// MaxSize bounds the memory backend (0 = unlimited).
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
	// Resilience wraps remote backends in retry and circuit breaking.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
}

// RedisConfig configures the redis connection.
type RedisConfig struct {
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// ResilienceConfig configures retry and circuit breaking around a cache.
type ResilienceConfig struct {
	// MaxAttempts is the number of tries per cache call.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	// FailureThreshold is consecutive failures before the circuit opens.
	FailureThreshold int `json:"failure_threshold,omitempty" yaml:"failure_threshold,omitempty"`
	// OpenTimeout is how long the circuit stays open.
	OpenTimeout Duration `json:"open_timeout,omitempty" yaml:"open_timeout,omitempty"`
}

// HistoryConfig configures where finished runs are recorded.
type HistoryConfig struct {
	// Backend is none, memory, or sqlite.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Path is the sqlite database file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
	// Metrics enables search and cache metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// TracingConfig configures the trace exporter.
type TracingConfig struct {
	// Exporter is noop, stdout, or otlp.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP collector address.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Insecure disables TLS for the OTLP exporter.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// SampleRate is the fraction of runs traced (0 means 1.0).
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Trace exporters.
const (
	ExporterNoop   = "noop"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Default returns the configuration used when no file is present.
func Default() *PlannerConfig {
	return &PlannerConfig{
		Algorithm: "uniform-cost",
		Output:    OutputConfig{Format: "text"},
		Logging:   LoggingConfig{Level: "warn", Format: "console"},
		Cache: CacheConfig{
			Backend:   BackendNone,
			TTL:       Duration(time.Hour),
			Dir:       ".gridplan",
			KeyPrefix: "gridplan:",
			Redis:     RedisConfig{Address: "localhost:6379"},
			Resilience: ResilienceConfig{
				MaxAttempts:      3,
				InitialDelay:     Duration(50 * time.Millisecond),
				FailureThreshold: 5,
				OpenTimeout:      Duration(30 * time.Second),
			},
		},
		History: HistoryConfig{Backend: BackendNone, Path: ".gridplan/history.db"},
		Telemetry: TelemetryConfig{
			Tracing: TracingConfig{Exporter: ExporterNoop, Endpoint: "localhost:4317", Insecure: true},
		},
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
