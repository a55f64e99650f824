// Package provider wraps units of work as RequestResponse values so that
// cross-cutting behavior can be layered on with middleware.
//
// The engine runs every pipeline stage through a chain built here:
//
//	stage := provider.Chain(
//	    provider.WithTracing[In, Out](tracer, "dyne.stage", attrs),
//	    provider.WithMetrics[In, Out](record),
//	    provider.WithLogging[In, Out](log, fields),
//	)(provider.NewFunc("corr", compute))
//
// WithRecover turns a panic inside Execute into an error.
package provider
