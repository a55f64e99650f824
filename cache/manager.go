package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/resilience"
	"github.com/kbukum/dyne/storage"
)

// EntryKey identifies one stage output.
type EntryKey struct {
	// Pipe is the stage's pipe_name.
	Pipe string
	// Hash is the stage's chained parameter hash.
	Hash string
	// Window is the window index.
	Window int
	// Cache enables reading and writing the entry. When false GetOrCompute
	// only computes.
	Cache bool
}

// ComputeFunc produces a stage output on a cache miss.
type ComputeFunc func(ctx context.Context) (pipe.Packet, error)

// Stats counts cache activity since the last BeginRun.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Writes int `json:"writes"`
}

// entry is the stored form of a cached packet.
type entry struct {
	Hash   string      `json:"hash"`
	Pipe   string      `json:"pipe"`
	Window int         `json:"window"`
	Packet pipe.Packet `json:"packet"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetry sets the retry policy for writes.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(m *Manager) { m.retry = cfg }
}

// Manager reads and writes the records of one (model, dataset) namespace.
// A namespace is assumed to have a single writer at a time.
type Manager struct {
	store storage.Storage
	opts  Options
	log   *logger.Logger
	retry resilience.RetryConfig

	mu       sync.Mutex
	written  map[string]struct{}
	warnings []string
	stats    Stats
}

// NewManager validates opts and returns a Manager over store.
func NewManager(store storage.Storage, opts Options, log *logger.Logger, options ...Option) (*Manager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	m := &Manager{
		store:   store,
		opts:    opts,
		log:     log.WithComponent("cache"),
		retry:   resilience.DefaultRetryConfig(),
		written: make(map[string]struct{}),
	}
	for _, o := range options {
		o(m)
	}
	return m, nil
}

// Options returns the manager's runtime options.
func (m *Manager) Options() Options { return m.opts }

// Store returns the underlying store.
func (m *Manager) Store() storage.Storage { return m.store }

// BeginRun clears the per-run written set, warnings and stats.
func (m *Manager) BeginRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = make(map[string]struct{})
	m.warnings = nil
	m.stats = Stats{}
}

// Stats returns cache activity since the last BeginRun.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Warnings returns the non-fatal problems seen since the last BeginRun.
func (m *Manager) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warnings...)
}

func (m *Manager) warn(msg string, fields map[string]interface{}) {
	m.log.Warn(msg, fields)
	m.mu.Lock()
	m.warnings = append(m.warnings, fmt.Sprintf("%s: %v", msg, fields[logger.FieldError]))
	m.mu.Unlock()
}

// SaveOptions writes the options record.
func (m *Manager) SaveOptions(ctx context.Context) error {
	data, err := json.MarshalIndent(m.opts, "", "  ")
	if err != nil {
		return errors.Internal(err)
	}
	return m.write(ctx, m.opts.OptionsPath(), data)
}

// LoadOptions reads the options record. A missing record is NOT_FOUND.
func (m *Manager) LoadOptions(ctx context.Context) (Options, error) {
	var opts Options
	data, err := m.read(ctx, m.opts.OptionsPath())
	if err != nil {
		return opts, err
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return opts, errors.Storage("decode", m.opts.OptionsPath(), err)
	}
	return opts, nil
}

// SavePipelineDefinition writes the definition record in canonical form.
func (m *Manager) SavePipelineDefinition(ctx context.Context, def definition.Definition) error {
	data, err := def.Encode()
	if err != nil {
		return errors.Internal(err)
	}
	return m.write(ctx, m.opts.DefinitionPath(), data)
}

// LoadPipelineDefinition reads the definition record. A missing record is
// NOT_FOUND.
func (m *Manager) LoadPipelineDefinition(ctx context.Context) (definition.Definition, error) {
	data, err := m.read(ctx, m.opts.DefinitionPath())
	if err != nil {
		return nil, err
	}
	def, err := definition.Parse(data, "json")
	if err != nil {
		return nil, errors.Storage("decode", m.opts.DefinitionPath(), err)
	}
	return def, nil
}

// DetectDrift reports whether a stored definition exists and differs from
// def. A namespace without a stored definition has no drift.
func (m *Manager) DetectDrift(ctx context.Context, def definition.Definition) (bool, error) {
	stored, err := m.LoadPipelineDefinition(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	current, err := def.Canonical()
	if err != nil {
		return false, err
	}
	return !stored.Equal(current), nil
}

// GetOrCompute returns the cached output for key when caching is enabled and
// a valid entry exists; otherwise it calls compute and, when caching is
// enabled, stores the result once per run. hit reports whether compute was
// skipped. Only compute errors are returned: cache read and write problems
// degrade to warnings.
func (m *Manager) GetOrCompute(ctx context.Context, key EntryKey, compute ComputeFunc) (out pipe.Packet, hit bool, err error) {
	if !key.Cache {
		out, err = compute(ctx)
		return out, false, err
	}

	p := m.opts.EntryPath(key.Pipe, key.Hash, key.Window)
	if pkt, ok := m.lookup(ctx, p, key); ok {
		m.mu.Lock()
		m.stats.Hits++
		m.mu.Unlock()
		return pkt, true, nil
	}

	m.mu.Lock()
	m.stats.Misses++
	m.mu.Unlock()

	out, err = compute(ctx)
	if err != nil {
		return out, false, err
	}

	m.mu.Lock()
	_, done := m.written[p]
	m.written[p] = struct{}{}
	m.mu.Unlock()
	if done {
		return out, false, nil
	}

	data, encErr := json.Marshal(entry{Hash: key.Hash, Pipe: key.Pipe, Window: key.Window, Packet: out})
	if encErr != nil {
		m.warn("cache entry not encodable", map[string]interface{}{
			logger.FieldPath: p, logger.FieldError: encErr.Error(),
		})
		return out, false, nil
	}
	if werr := m.write(ctx, p, data); werr != nil {
		m.warn("cache write failed", map[string]interface{}{
			logger.FieldPath: p, logger.FieldError: werr.Error(),
		})
		return out, false, nil
	}
	m.mu.Lock()
	m.stats.Writes++
	m.mu.Unlock()
	return out, false, nil
}

// lookup returns a stored packet if the entry exists, decodes and matches key.
func (m *Manager) lookup(ctx context.Context, p string, key EntryKey) (pipe.Packet, bool) {
	data, err := storage.ReadAll(ctx, m.store, p)
	if err != nil {
		if !storage.IsNotFound(err) {
			m.warn("cache read failed", map[string]interface{}{
				logger.FieldPath: p, logger.FieldError: err.Error(),
			})
		}
		return pipe.Packet{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		m.warn("corrupt cache entry, recomputing", map[string]interface{}{
			logger.FieldPath: p, logger.FieldError: err.Error(),
		})
		return pipe.Packet{}, false
	}
	if e.Hash != key.Hash || e.Window != key.Window {
		m.warn("stale cache entry, recomputing", map[string]interface{}{
			logger.FieldPath:  p,
			logger.FieldError: fmt.Sprintf("entry for window %d hash %.16s", e.Window, e.Hash),
		})
		return pipe.Packet{}, false
	}
	return e.Packet, true
}

func (m *Manager) write(ctx context.Context, p string, data []byte) error {
	err := resilience.RetryFunc(ctx, m.retry, func() error {
		return storage.WriteAll(ctx, m.store, p, data)
	})
	if err != nil {
		return errors.Storage("write", p, err)
	}
	return nil
}

func (m *Manager) read(ctx context.Context, p string) ([]byte, error) {
	data, err := storage.ReadAll(ctx, m.store, p)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, errors.NotFound("record", p).WithCause(err)
		}
		return nil, errors.Storage("read", p, err)
	}
	return data, nil
}
