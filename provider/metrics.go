package provider

import (
	"context"
	"time"
)

// RecordFunc receives the outcome of one Execute call.
type RecordFunc[I, O any] func(ctx context.Context, input I, output O, err error, elapsed time.Duration)

// WithMetrics times each Execute call and hands the outcome to record.
func WithMetrics[I, O any](record RecordFunc[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, record: record}
	}
}

type metricsRR[I, O any] struct {
	inner  RequestResponse[I, O]
	record RecordFunc[I, O]
}

func (m *metricsRR[I, O]) Name() string { return m.inner.Name() }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)
	m.record(ctx, input, output, err, time.Since(start))
	return output, err
}
