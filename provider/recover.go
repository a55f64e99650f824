package provider

import (
	"context"
	"fmt"
)

// WithRecover converts a panic inside Execute into an error.
func WithRecover[I, O any]() Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &recoverRR[I, O]{inner: inner}
	}
}

type recoverRR[I, O any] struct {
	inner RequestResponse[I, O]
}

func (r *recoverRR[I, O]) Name() string { return r.inner.Name() }

func (r *recoverRR[I, O]) Execute(ctx context.Context, input I) (output O, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero O
			output, err = zero, fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.inner.Execute(ctx, input)
}
