package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/observability"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/provider"
)

// stageResult is one stage's output for a window.
type stageResult struct {
	Packet pipe.Packet
	Hit    bool
}

// stageRunner runs one stage for one window.
type stageRunner = provider.RequestResponse[pipe.Packet, stageResult]

// processWindow runs one source packet through every stage. On failure it
// returns the failing stage and a PROCESS_FAILED error; the rest of the
// chain is not run for this window.
func (e *Engine) processWindow(ctx context.Context, in pipe.Packet) (pipe.Packet, *definition.Stage, error) {
	ctx, span := e.tracer.Start(ctx, observability.SpanWindow, trace.WithAttributes(
		attribute.Int(observability.AttrWindow, in.Window.Index),
	))
	defer span.End()

	pkt := in
	for i, stage := range e.chain.Stages {
		res, err := e.runners[i].Execute(ctx, pkt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return pipe.Packet{}, stage, err
		}
		pkt = res.Packet
	}
	return pkt, nil, nil
}

// newStageRunner wraps stage's Process with the cache lookup, then with
// tracing, metrics and logging. A panic in Process is a failure of that
// window only and is never cached.
func (e *Engine) newStageRunner(stage *definition.Stage) stageRunner {
	process := provider.WithRecover[pipe.Packet, pipe.Packet]()(
		provider.NewFunc(stage.Name, stage.Pipe.Process),
	)
	tag := shortHash(stage.Hash)

	cached := provider.NewFunc(stage.Name, func(ctx context.Context, in pipe.Packet) (stageResult, error) {
		w := in.Window
		key := cache.EntryKey{Pipe: stage.Name, Hash: stage.Hash, Window: w.Index, Cache: stage.Cache}
		out, hit, err := e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (pipe.Packet, error) {
			out, err := process.Execute(ctx, in)
			if err != nil {
				return pipe.Packet{}, err
			}
			out.Window = w
			return out.Tagged(stage.Name, tag), nil
		})
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(observability.AttrCacheHit, hit))
		if err != nil {
			return stageResult{}, errors.ProcessFailed(stage.Name, stage.Position, w.Index, err)
		}
		return stageResult{Packet: out, Hit: hit}, nil
	})

	return provider.Chain(
		provider.WithTracing[pipe.Packet, stageResult](e.tracer, observability.SpanStage, func(in pipe.Packet) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String(observability.AttrPipe, stage.Name),
				attribute.String(observability.AttrCategory, string(stage.Category)),
				attribute.Int(observability.AttrWindow, in.Window.Index),
			}
		}),
		provider.WithMetrics[pipe.Packet, stageResult](func(ctx context.Context, _ pipe.Packet, res stageResult, err error, elapsed time.Duration) {
			if stage.Cache {
				e.metrics.RecordCache(ctx, stage.Name, res.Hit)
			}
			outcome := observability.StageOK
			switch {
			case err != nil:
				outcome = observability.StageError
			case res.Hit:
				outcome = observability.StageCached
			}
			e.metrics.RecordStage(ctx, stage.Name, string(stage.Category), outcome, elapsed)
		}),
		provider.WithLogging[pipe.Packet, stageResult](e.log, func(in pipe.Packet) map[string]interface{} {
			return logger.Fields(
				logger.FieldPipe, stage.Name,
				logger.FieldPosition, stage.Position,
				logger.FieldWindow, in.Window.Index,
			)
		}),
	)(cached)
}

// windowOrder admits source windows only when they are well formed and
// strictly after the previous one in both index and start time. Cache
// entries are keyed by window index, so a repeated index would be served
// another window's result.
type windowOrder struct {
	prev pipe.Window
	seen bool
}

func (o *windowOrder) admit(w pipe.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if o.seen {
		if w.Index <= o.prev.Index {
			return fmt.Errorf("window index %d does not follow %d", w.Index, o.prev.Index)
		}
		if w.Start <= o.prev.Start {
			return fmt.Errorf("window %d starts at %v, not after window %d at %v", w.Index, w.Start, o.prev.Index, o.prev.Start)
		}
	}
	o.prev, o.seen = w, true
	return nil
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
