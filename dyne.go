package dyne

import (
	"context"
	"fmt"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/engine"
	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipes"
	"github.com/kbukum/dyne/runlog"
	"github.com/kbukum/dyne/storage/local"
)

// Pipeline is a validated chain bound to its runtime options. A Pipeline
// runs once.
type Pipeline struct {
	def      definition.Definition
	chain    *definition.Chain
	cache    *cache.Manager
	runs     runlog.Registry
	engine   *engine.Engine
	log      *logger.Logger
	warnings []string
}

// New validates opts, builds def and prepares an idle Pipeline. Every
// construction error is returned before any record is written. Failing to
// persist the options or definition record, or finding that the stored
// definition differs from def, only adds a warning.
func New(ctx context.Context, def definition.Definition, opts cache.Options, options ...Option) (*Pipeline, error) {
	s := &settings{}
	for _, o := range options {
		o(s)
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.registry == nil {
		s.registry = pipes.NewRegistry()
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	chain, err := definition.NewLoader(s.registry, s.rules, s.log).Build(def)
	if err != nil {
		return nil, err
	}

	if s.store == nil {
		st, err := local.NewStorage(opts.WorkingPath)
		if err != nil {
			return nil, errors.Storage("open", opts.WorkingPath, err)
		}
		s.store = st
	}
	cm, err := cache.NewManager(s.store, opts, s.log, s.cacheOpts...)
	if err != nil {
		return nil, err
	}
	if s.runs == nil {
		s.runs = runlog.NewJSONL(s.store, opts)
	}

	p := &Pipeline{
		def:   chain.Definition,
		chain: chain,
		cache: cm,
		runs:  s.runs,
		log:   s.log.WithComponent("pipeline"),
	}
	if !s.skipRecords {
		p.persist(ctx)
	}

	engineOpts := append([]engine.Option{
		engine.WithLogger(s.log),
		engine.WithRunLog(s.runs),
	}, s.engineOpts...)
	p.engine, err = engine.New(chain, cm, engineOpts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// persist checks for drift and writes the options and definition records.
func (p *Pipeline) persist(ctx context.Context) {
	drift, err := p.cache.DetectDrift(ctx, p.def)
	switch {
	case err != nil:
		p.warn("drift check failed", err)
	case drift:
		p.warn("pipeline definition differs from the stored one", nil)
	}
	if err := p.cache.SaveOptions(ctx); err != nil {
		p.warn("saving options failed", err)
	}
	if err := p.cache.SavePipelineDefinition(ctx, p.def); err != nil {
		p.warn("saving pipeline definition failed", err)
	}
}

func (p *Pipeline) warn(msg string, err error) {
	fields := logger.Fields(logger.FieldPath, p.cache.Options().Namespace())
	w := msg
	if err != nil {
		fields[logger.FieldError] = err.Error()
		w = fmt.Sprintf("%s: %v", msg, err)
	}
	p.log.Warn(msg, fields)
	p.warnings = append(p.warnings, w)
}

// RunID returns the identifier of the pipeline's run.
func (p *Pipeline) RunID() string { return p.engine.RunID() }

// Definition returns the canonical definition.
func (p *Pipeline) Definition() definition.Definition { return p.def }

// Options returns the runtime options.
func (p *Pipeline) Options() cache.Options { return p.cache.Options() }

// Chain returns the resolved chain.
func (p *Pipeline) Chain() *definition.Chain { return p.chain }

// Cache returns the pipeline's cache manager.
func (p *Pipeline) Cache() *cache.Manager { return p.cache }

// Runs returns the run log.
func (p *Pipeline) Runs() runlog.Registry { return p.runs }

// Warnings returns the problems found while constructing the pipeline.
func (p *Pipeline) Warnings() []string { return append([]string(nil), p.warnings...) }

// State returns the run's state.
func (p *Pipeline) State() engine.State { return p.engine.State() }

// Start begins processing windows in the background.
func (p *Pipeline) Start(ctx context.Context) error { return p.engine.Start(ctx) }

// Stop asks the run to stop at the next window boundary.
func (p *Pipeline) Stop() { p.engine.Stop() }

// Wait blocks until the run finishes. Construction warnings are prepended to
// the result's warnings.
func (p *Pipeline) Wait(ctx context.Context) (engine.Result, error) {
	res, err := p.engine.Wait(ctx)
	if len(p.warnings) > 0 && res.State.Terminal() {
		res.Warnings = append(p.Warnings(), res.Warnings...)
	}
	return res, err
}

// Run starts the pipeline and waits for it to finish.
func (p *Pipeline) Run(ctx context.Context) (engine.Result, error) {
	if err := p.Start(ctx); err != nil {
		return engine.Result{}, err
	}
	return p.Wait(context.WithoutCancel(ctx))
}
