package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnknownExporter is returned for an unsupported exporter type.
var ErrUnknownExporter = errors.New("unknown trace exporter type")

// Provider owns the tracer and meter providers and their exporters.
type Provider struct {
	config         Config
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	shutdownFuncs  []func(context.Context) error
}

// New creates a provider. The noop exporter installs nothing globally.
func New(opts ...Option) (*Provider, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{
		config:         cfg,
		tracerProvider: noop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	res := p.resource()

	if cfg.Tracing.Exporter != ExporterNoop && cfg.Tracing.Exporter != "" {
		if err := p.setupTracing(context.Background(), res); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := p.setupMetrics(res); err != nil {
			return nil, errors.Join(err, p.Shutdown(context.Background()))
		}
	}
	return p, nil
}

// NewNoopProvider creates a provider whose spans and metrics are discarded.
func NewNoopProvider() *Provider {
	return &Provider{
		config:         DefaultConfig(),
		tracerProvider: noop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// resource is not merged with resource.Default() to avoid schema URL conflicts.
func (p *Provider) resource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(p.config.ServiceName),
		semconv.ServiceVersion(p.config.ServiceVersion),
		semconv.DeploymentEnvironment(p.config.Environment),
	)
}

func (p *Provider) setupTracing(ctx context.Context, res *resource.Resource) error {

	var exporter sdktrace.SpanExporter
	switch p.config.Tracing.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(p.config.Tracing.Endpoint),
		}
		if p.config.Tracing.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		exporter = exp

	case ExporterStdout:
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if p.config.Tracing.Writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(p.config.Tracing.Writer))
		}
		exp, err := stdouttrace.New(stdoutOpts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		exporter = exp

	default:
		return fmt.Errorf("%w: %s", ErrUnknownExporter, p.config.Tracing.Exporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(p.config.Tracing.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(p.config.Tracing.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(p.config.Tracing.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.tracerProvider = tp
	p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)
	return nil
}

func (p *Provider) setupMetrics(res *resource.Resource) error {
	opts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
	if p.config.Metrics.Writer != nil {
		opts = append(opts, stdoutmetric.WithWriter(p.config.Metrics.Writer))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create stdout metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if p.config.Metrics.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(p.config.Metrics.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)
	otel.SetMeterProvider(mp)

	p.meterProvider = mp
	p.shutdownFuncs = append(p.shutdownFuncs, mp.Shutdown)
	return nil
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the planner tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(p.config.ServiceName)
}

// MeterProvider returns the provider metrics should be recorded against.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// Exporter returns the configured exporter type.
func (p *Provider) Exporter() ExporterType {
	return p.config.Tracing.Exporter
}

// Shutdown flushes pending spans and metrics and releases the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
