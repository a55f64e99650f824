package provider

import "context"

// Provider is anything with a stable name.
type Provider interface {
	Name() string
}

// RequestResponse takes one input and returns one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Func adapts a plain function to RequestResponse.
type Func[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

// NewFunc names fn as a provider.
func NewFunc[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) *Func[I, O] {
	return &Func[I, O]{name: name, fn: fn}
}

// Name returns the provider name.
func (f *Func[I, O]) Name() string { return f.name }

// Execute calls the wrapped function.
func (f *Func[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}

var _ RequestResponse[any, any] = (*Func[any, any])(nil)
