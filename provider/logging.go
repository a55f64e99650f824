package provider

import (
	"context"
	"time"

	"github.com/kbukum/dyne/logger"
)

// FieldsFunc derives log fields from an input.
type FieldsFunc[I any] func(input I) map[string]interface{}

// WithLogging logs every Execute call: failures at warn, successes at
// debug. fields may be nil.
func WithLogging[I, O any](log *logger.Logger, fields FieldsFunc[I]) Middleware[I, O] {
	if log == nil {
		log = logger.NewNop()
	}
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &loggingRR[I, O]{inner: inner, log: log, fields: fields}
	}
}

type loggingRR[I, O any] struct {
	inner  RequestResponse[I, O]
	log    *logger.Logger
	fields FieldsFunc[I]
}

func (l *loggingRR[I, O]) Name() string { return l.inner.Name() }

func (l *loggingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := l.inner.Execute(ctx, input)

	fields := logger.DurationFields(l.inner.Name(), time.Since(start))
	if l.fields != nil {
		for k, v := range l.fields(input) {
			fields[k] = v
		}
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Warn("execute failed", fields)
	} else {
		l.log.Debug("execute ok", fields)
	}
	return output, err
}
