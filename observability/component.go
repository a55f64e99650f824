package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/dyne/component"
)

// Config groups the tracing and metrics exporters.
type Config struct {
	Tracing TracerConfig `mapstructure:"tracing"`
	Metrics MeterConfig  `mapstructure:"metrics"`
}

// ApplyDefaults fills exporter defaults for serviceName.
func (c *Config) ApplyDefaults(serviceName, serviceVersion string) {
	td := DefaultTracerConfig(serviceName)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = td.ServiceName
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = td.Endpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = td.SampleRate
	}
	md := DefaultMeterConfig(serviceName)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = md.ServiceName
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = md.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = md.Interval
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = serviceVersion
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = serviceVersion
	}
}

// Validate checks the sample rate.
func (c *Config) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1 (got: %v)", c.Tracing.SampleRate)
	}
	return nil
}

var _ component.Component = (*Component)(nil)

// Component installs the OTLP tracer and meter providers that are enabled
// and shuts them down on Stop. With both disabled the global no-op
// providers stay in place.
type Component struct {
	cfg Config
	tp  *sdktrace.TracerProvider
	mp  *sdkmetric.MeterProvider
}

// NewComponent returns a telemetry component for cfg.
func NewComponent(cfg Config) *Component {
	return &Component{cfg: cfg}
}

// Name returns the component name.
func (c *Component) Name() string { return "telemetry" }

// Start installs the enabled providers.
func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, c.cfg.Tracing)
		if err != nil {
			return err
		}
		c.tp = tp
	}
	if c.cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, c.cfg.Metrics)
		if err != nil {
			return err
		}
		c.mp = mp
	}
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
		c.tp = nil
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
		c.mp = nil
	}
	return errors.Join(errs...)
}

// Health reports which exporters are active.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.tp != nil && c.mp != nil:
		h.Message = "tracing and metrics"
	case c.tp != nil:
		h.Message = "tracing"
	case c.mp != nil:
		h.Message = "metrics"
	default:
		h.Message = "disabled"
	}
	return h
}
