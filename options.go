package dyne

import (
	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/engine"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/runlog"
	"github.com/kbukum/dyne/storage"
)

// Option configures New.
type Option func(*settings)

type settings struct {
	registry    *pipe.Registry
	rules       *pipe.Rules
	store       storage.Storage
	runs        runlog.Registry
	log         *logger.Logger
	cacheOpts   []cache.Option
	engineOpts  []engine.Option
	skipRecords bool
}

// WithRegistry resolves identifiers against r instead of the built-in pipes.
func WithRegistry(r *pipe.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithRules replaces the default link rules.
func WithRules(r *pipe.Rules) Option {
	return func(s *settings) { s.rules = r }
}

// WithStorage stores records and cache entries in st instead of the local
// filesystem under working_path.
func WithStorage(st storage.Storage) Option {
	return func(s *settings) { s.store = st }
}

// WithRunLog replaces the JSON-lines run log.
func WithRunLog(reg runlog.Registry) Option {
	return func(s *settings) { s.runs = reg }
}

// WithLogger sets the logger shared by every component of the pipeline.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithSubscriber registers sub for engine events.
func WithSubscriber(sub engine.Subscriber) Option {
	return func(s *settings) { s.engineOpts = append(s.engineOpts, engine.WithSubscriber(sub)) }
}

// WithCacheOptions passes options to the cache manager.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, opts...) }
}

// WithEngineOptions passes options to the engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *settings) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithoutRecords skips writing the options and definition records.
func WithoutRecords() Option {
	return func(s *settings) { s.skipRecords = true }
}
