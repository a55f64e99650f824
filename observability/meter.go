package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/dyne/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on the OTLP exporter.
	Enabled bool `mapstructure:"enabled"`
	// ServiceName is the name reported for this process.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `mapstructure:"service_version"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure disables TLS for the exporter.
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName: serviceName,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		Interval:    15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns dyne's meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Stage outcomes recorded by RecordStage.
const (
	StageOK     = "ok"
	StageCached = "cached"
	StageError  = "error"
)

// Window outcomes recorded by RecordWindow.
const (
	WindowCompleted = "completed"
	WindowSkipped   = "skipped"
)

// Metrics holds the engine's metric instruments.
type Metrics struct {
	stageDuration metric.Float64Histogram
	windowTotal   metric.Int64Counter
	cacheLookups  metric.Int64Counter
	runTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stageDuration, err := meter.Float64Histogram("dyne.stage.duration",
		metric.WithDescription("Time spent producing one stage output"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dyne.stage.duration histogram: %w", err)
	}

	windowTotal, err := meter.Int64Counter("dyne.window.total",
		metric.WithDescription("Windows drawn from the source, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dyne.window.total counter: %w", err)
	}

	cacheLookups, err := meter.Int64Counter("dyne.cache.lookups",
		metric.WithDescription("Cache lookups, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dyne.cache.lookups counter: %w", err)
	}

	runTotal, err := meter.Int64Counter("dyne.run.total",
		metric.WithDescription("Finished runs, by terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dyne.run.total counter: %w", err)
	}

	return &Metrics{
		stageDuration: stageDuration,
		windowTotal:   windowTotal,
		cacheLookups:  cacheLookups,
		runTotal:      runTotal,
	}, nil
}

// RecordStage records one stage execution.
func (m *Metrics) RecordStage(ctx context.Context, pipe, category, outcome string, d time.Duration) {
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("pipe", pipe),
		attribute.String("category", category),
		attribute.String("outcome", outcome),
	))
}

// RecordWindow counts a finished window.
func (m *Metrics) RecordWindow(ctx context.Context, outcome string) {
	m.windowTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCache counts a cache lookup.
func (m *Metrics) RecordCache(ctx context.Context, pipe string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipe", pipe),
		attribute.String("result", result),
	))
}

// RecordRun counts a run reaching a terminal state.
func (m *Metrics) RecordRun(ctx context.Context, state string) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}
