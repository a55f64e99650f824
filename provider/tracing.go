package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AttrsFunc derives span attributes from an input.
type AttrsFunc[I any] func(input I) []attribute.KeyValue

// WithTracing runs each Execute call inside a span named spanName. The
// inner provider can add attributes through trace.SpanFromContext.
func WithTracing[I, O any](tracer trace.Tracer, spanName string, attrs AttrsFunc[I]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, tracer: tracer, spanName: spanName, attrs: attrs}
	}
}

type tracingRR[I, O any] struct {
	inner    RequestResponse[I, O]
	tracer   trace.Tracer
	spanName string
	attrs    AttrsFunc[I]
}

func (t *tracingRR[I, O]) Name() string { return t.inner.Name() }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var opts []trace.SpanStartOption
	if t.attrs != nil {
		opts = append(opts, trace.WithAttributes(t.attrs(input)...))
	}
	ctx, span := t.tracer.Start(ctx, t.spanName, opts...)
	defer span.End()

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return output, err
}
