package engine

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/observability"
	"github.com/kbukum/dyne/runlog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRunLog records start and end records in reg.
func WithRunLog(reg runlog.Registry) Option {
	return func(e *Engine) { e.runlog = reg }
}

// WithSubscriber registers s for engine events.
func WithSubscriber(s Subscriber) Option {
	return func(e *Engine) { e.subs = append(e.subs, s) }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer sets the tracer used for run, window and stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// WithFrameworkVersion sets the version recorded in run records.
func WithFrameworkVersion(v string) Option {
	return func(e *Engine) { e.frameworkVersion = v }
}
