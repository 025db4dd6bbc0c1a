// Package observability provides OpenTelemetry tracing for planning runs.
package observability

import (
	"io"
	"os"
	"time"
)

// Config configures the tracing infrastructure.
type Config struct {
	// ServiceName is the name of the service for telemetry.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Environment is the deployment environment (e.g., "production", "staging").
	Environment string

	// Tracing configures span export.
	Tracing TracingConfig

	// Metrics configures metric export.
	Metrics MetricsConfig
}

// MetricsConfig configures periodic metric export.
type MetricsConfig struct {
	// Enabled installs an SDK meter provider with a stdout exporter.
	Enabled bool

	// Interval is the export period. A final export happens on shutdown.
	Interval time.Duration

	// Writer receives exported metrics. Defaults to stderr.
	Writer io.Writer
}

// TracingConfig configures distributed tracing.
type TracingConfig struct {
	// Exporter specifies the trace exporter type.
	Exporter ExporterType

	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS for the exporter connection.
	Insecure bool

	// SampleRate is the sampling rate (0.0-1.0, default: 1.0).
	SampleRate float64

	// BatchTimeout is the batch export timeout.
	BatchTimeout time.Duration

	// MaxExportBatchSize is the maximum batch size.
	MaxExportBatchSize int

	// Writer receives stdout-exporter output. Defaults to stderr so that
	// plan output on stdout stays clean.
	Writer io.Writer
}

// ExporterType specifies the trace exporter.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP gRPC endpoint (Jaeger, Tempo, Grafana).
	ExporterOTLP ExporterType = "otlp"

	// ExporterStdout pretty-prints spans (useful for development).
	ExporterStdout ExporterType = "stdout"

	// ExporterNoop disables export.
	ExporterNoop ExporterType = "noop"
)

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "gridplan",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Tracing: TracingConfig{
			Exporter:           ExporterNoop,
			SampleRate:         1.0,
			BatchTimeout:       5 * time.Second,
			MaxExportBatchSize: 512,
			Writer:             os.Stderr,
		},
		Metrics: MetricsConfig{
			Interval: 30 * time.Second,
			Writer:   os.Stderr,
		},
	}
}

// Option configures the observability infrastructure.
type Option func(*Config)

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithEnvironment sets the environment.
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithExporter selects the exporter and its endpoint.
func WithExporter(exporter ExporterType, endpoint string) Option {
	return func(c *Config) {
		c.Tracing.Exporter = exporter
		c.Tracing.Endpoint = endpoint
	}
}

// WithInsecure disables TLS for the OTLP exporter.
func WithInsecure(insecure bool) Option {
	return func(c *Config) {
		c.Tracing.Insecure = insecure
	}
}

// WithSampleRate sets the trace sampling rate.
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.Tracing.SampleRate = rate
	}
}

// WithWriter redirects stdout-exporter output for spans and metrics.
func WithWriter(w io.Writer) Option {
	return func(c *Config) {
		c.Tracing.Writer = w
		c.Metrics.Writer = w
	}
}

// WithMetrics enables metric export.
func WithMetrics(enabled bool) Option {
	return func(c *Config) {
		c.Metrics.Enabled = enabled
	}
}

// WithMetricsInterval sets the metric export period.
func WithMetricsInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Metrics.Interval = d
	}
}

// WithBatchTimeout sets how long spans wait before export.
func WithBatchTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Tracing.BatchTimeout = d
	}
}
