package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/observability"
	"github.com/kbukum/dyne/runlog"
	"github.com/kbukum/dyne/version"
)

// Result summarises a finished run.
type Result struct {
	RunID       string
	State       State
	Windows     int
	Completed   int
	Skipped     []int
	CacheHits   int
	CacheMisses int
	Warnings    []string
	Duration    time.Duration
	Err         error
}

// Engine runs one chain once. Create a new Engine for every run.
type Engine struct {
	chain            *definition.Chain
	cache            *cache.Manager
	runlog           runlog.Registry
	log              *logger.Logger
	metrics          *observability.Metrics
	tracer           trace.Tracer
	subs             []Subscriber
	runners          []stageRunner
	runID            string
	frameworkVersion string

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	done      chan struct{}
	result    Result
	startedAt time.Time
	warnings  []string
	windows   int
}

// New creates an idle engine for chain. Cache entries, options and records
// go through cm.
func New(chain *definition.Chain, cm *cache.Manager, opts ...Option) (*Engine, error) {
	if chain == nil || chain.Len() == 0 {
		return nil, errors.EmptyPipeline()
	}
	if cm == nil {
		return nil, errors.InvalidOptions("cache manager is required")
	}

	e := &Engine{
		chain:            chain,
		cache:            cm,
		state:            StateIdle,
		frameworkVersion: version.GetShortVersion(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.tracer == nil {
		e.tracer = observability.Tracer()
	}
	if e.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter())
		if err != nil {
			return nil, errors.Internal(err)
		}
		e.metrics = m
	}
	o := cm.Options()
	e.log = e.log.WithRun(e.runID, o.ModelName, o.DatasetName).WithComponent("engine")
	e.runners = make([]stageRunner, len(chain.Stages))
	for i, stage := range chain.Stages {
		e.runners[i] = e.newStageRunner(stage)
	}
	return e, nil
}

// RunID returns the run's identifier.
func (e *Engine) RunID() string { return e.runID }

// Chain returns the chain being run.
func (e *Engine) Chain() *definition.Chain { return e.chain }

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Windows returns the number of windows drawn so far.
func (e *Engine) Windows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.windows
}

// Start launches the run in the background. It returns INVALID_STATE unless
// the engine is IDLE. Cancelling ctx has the same effect as Stop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle {
		state := e.state
		e.mu.Unlock()
		return errors.InvalidState("start", string(state))
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.startedAt = time.Now()
	e.state = StateRunning
	e.mu.Unlock()

	e.cache.BeginRun()
	e.appendRecord(ctx, e.record(runlog.PhaseStart, StateRunning))
	e.emit(ctx, Event{Type: EventStateChanged, State: StateRunning, Previous: StateIdle})
	e.log.Info("run started", logger.Fields("stages", e.chain.Len()))

	go e.drive(runCtx)
	return nil
}

// Stop asks a running engine to stop at the next window boundary. A source
// blocked waiting for data is interrupted; a window already in flight
// finishes first. Stop on an engine that is not running does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning && e.cancel != nil {
		e.log.Info("stop requested")
		e.cancel()
	}
}

// Wait blocks until the run reaches a terminal state or ctx is done. The
// returned error is the run's failure, if any.
func (e *Engine) Wait(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return Result{}, errors.InvalidState("wait", string(StateIdle))
	}
	done := e.done
	e.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.result.Err
}

// Run starts the engine and waits for it to finish.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if err := e.Start(ctx); err != nil {
		return Result{}, err
	}
	return e.Wait(context.WithoutCancel(ctx))
}

// drive is the driver goroutine: it owns the source for the whole run.
func (e *Engine) drive(ctx context.Context) {
	o := e.cache.Options()
	runCtx, span := e.tracer.Start(context.WithoutCancel(ctx), observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrRunID, e.runID),
		attribute.String(observability.AttrModel, o.ModelName),
		attribute.String(observability.AttrDataset, o.DatasetName),
	))

	state, skipped, completed, err := e.loop(ctx, runCtx)

	span.SetAttributes(attribute.String(observability.AttrStatus, string(state)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	e.finish(runCtx, state, skipped, completed, err)
}

// loop draws windows until the source is exhausted, fails, or a stop is
// requested. stopCtx carries stop requests; runCtx never cancels.
func (e *Engine) loop(stopCtx, runCtx context.Context) (State, []int, int, error) {
	src := e.chain.Source()
	srcName := e.chain.Stages[0].Name
	skipped := make([]int, 0)
	completed := 0
	var order windowOrder

	if err := src.Open(stopCtx); err != nil {
		if stopCtx.Err() != nil {
			return StateStopped, skipped, completed, nil
		}
		return StateFailed, skipped, completed, errors.SourceFailed(srcName, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			e.log.Warn("source close failed", logger.ErrorFields("close", err))
		}
	}()

	for {
		if stopCtx.Err() != nil {
			return StateStopped, skipped, completed, nil
		}

		pkt, ok, err := src.Next(stopCtx)
		if err != nil {
			if stopCtx.Err() != nil {
				return StateStopped, skipped, completed, nil
			}
			return StateFailed, skipped, completed, errors.SourceFailed(srcName, err)
		}
		if !ok {
			return StateCompleted, skipped, completed, nil
		}
		if err := order.admit(pkt.Window); err != nil {
			e.log.Error("source produced an invalid window", logger.ErrorFields("next", err))
			return StateFailed, skipped, completed, errors.SourceFailed(srcName, err)
		}

		e.mu.Lock()
		e.windows++
		e.mu.Unlock()

		out, failed, err := e.processWindow(runCtx, pkt)
		if err != nil {
			if failed.Required {
				e.log.Error("required stage failed", logger.Fields(
					logger.FieldPipe, failed.Name, logger.FieldWindow, pkt.Window.Index, logger.FieldError, err.Error(),
				))
				return StateFailed, skipped, completed, err
			}
			skipped = append(skipped, pkt.Window.Index)
			e.metrics.RecordWindow(runCtx, observability.WindowSkipped)
			e.emit(runCtx, Event{Type: EventWindowSkipped, Window: pkt.Window, Stage: failed.Name, Err: err})
			continue
		}

		completed++
		e.metrics.RecordWindow(runCtx, observability.WindowCompleted)
		e.emit(runCtx, Event{Type: EventWindowCompleted, Window: pkt.Window, Output: &out})
	}
}

func (e *Engine) finish(ctx context.Context, state State, skipped []int, completed int, err error) {
	stats := e.cache.Stats()

	e.mu.Lock()
	warnings := append(e.cache.Warnings(), e.warnings...)
	e.result = Result{
		RunID:       e.runID,
		State:       state,
		Windows:     e.windows,
		Completed:   completed,
		Skipped:     skipped,
		CacheHits:   stats.Hits,
		CacheMisses: stats.Misses,
		Warnings:    warnings,
		Duration:    time.Since(e.startedAt),
		Err:         err,
	}
	e.mu.Unlock()

	e.appendRecord(ctx, e.record(runlog.PhaseEnd, state))

	e.mu.Lock()
	e.result.Warnings = append(e.cache.Warnings(), e.warnings...)
	e.state = state
	result := e.result
	e.mu.Unlock()

	e.metrics.RecordRun(ctx, string(state))
	e.log.Info("run finished", logger.Fields(
		logger.FieldState, string(state),
		"windows", result.Windows,
		"completed", result.Completed,
		"skipped", len(result.Skipped),
		"cache_hits", result.CacheHits,
		logger.FieldDuration, result.Duration.Milliseconds(),
	))
	e.emit(ctx, Event{Type: EventStateChanged, State: state, Previous: StateRunning, Err: err})

	e.mu.Lock()
	e.cancel()
	close(e.done)
	e.mu.Unlock()
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	ev.RunID = e.runID
	ev.Time = time.Now()
	for _, s := range e.subs {
		e.deliver(ctx, s, ev)
	}
}

func (e *Engine) deliver(ctx context.Context, s Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.warn(fmt.Sprintf("subscriber panicked on %s: %v", ev.Type, r))
		}
	}()
	s.OnEvent(ctx, ev)
}

func (e *Engine) warn(msg string) {
	e.log.Warn(msg)
	e.mu.Lock()
	e.warnings = append(e.warnings, msg)
	e.mu.Unlock()
}

func (e *Engine) record(phase runlog.Phase, state State) runlog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := runlog.Record{
		RunID:            e.runID,
		Phase:            phase,
		Status:           state.runStatus(),
		Options:          e.cache.Options(),
		Definition:       e.chain.Definition,
		PipeVersions:     e.chain.Versions(),
		FrameworkVersion: e.frameworkVersion,
		StartedAt:        e.startedAt,
	}
	if phase == runlog.PhaseEnd {
		ended := e.startedAt.Add(e.result.Duration)
		rec.EndedAt = &ended
		rec.Windows = e.result.Windows
		rec.Completed = e.result.Completed
		rec.Skipped = e.result.Skipped
		rec.CacheHits = e.result.CacheHits
		rec.CacheMisses = e.result.CacheMisses
		rec.Warnings = e.result.Warnings
		if e.result.Err != nil {
			rec.Error = e.result.Err.Error()
		}
	}
	return rec
}

func (e *Engine) appendRecord(ctx context.Context, rec runlog.Record) {
	if e.runlog == nil {
		return
	}
	if err := e.runlog.Append(context.WithoutCancel(ctx), rec); err != nil {
		e.warn(fmt.Sprintf("run log append (%s) failed: %v", rec.Phase, err))
	}
}
