package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/kbukum/dyne/definition"
	dyneerrors "github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/resilience"
	"github.com/kbukum/dyne/storage"
	"github.com/kbukum/dyne/storage/local"
)

func testOptions(dir string) Options {
	return Options{WorkingPath: dir, ModelName: "mouse", DatasetName: "session1"}
}

func newLocalManager(t *testing.T) (*Manager, *local.Storage) {
	t.Helper()
	dir := t.TempDir()
	store, err := local.NewStorage(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m, err := NewManager(store, testOptions(dir), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return m, store
}

func testPacket(window int) pipe.Packet {
	return pipe.Packet{
		Window: pipe.Window{Index: window, Start: float64(window) * 0.5, Duration: 1, Displacement: 0.5},
		Rows:   pipe.Axis{Label: pipe.AxisNode, Names: []string{"a", "b"}},
		Cols:   pipe.Axis{Label: pipe.AxisNode, Names: []string{"a", "b"}},
		Data:   [][]float64{{1, 0.25}, {0.25, 1}},
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{WorkingPath: "/w", ModelName: "m", DatasetName: "d"}, false},
		{"missing working path", Options{ModelName: "m", DatasetName: "d"}, true},
		{"missing model", Options{WorkingPath: "/w", DatasetName: "d"}, true},
		{"separator in dataset", Options{WorkingPath: "/w", ModelName: "m", DatasetName: "a/b"}, true},
		{"dot-dot model", Options{WorkingPath: "/w", ModelName: "..", DatasetName: "d"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !dyneerrors.HasCode(err, dyneerrors.ErrCodeInvalidOptions) {
				t.Errorf("expected INVALID_OPTIONS, got %v", err)
			}
		})
	}
}

func TestOptions_Paths(t *testing.T) {
	o := Options{WorkingPath: "/w", ModelName: "m", DatasetName: "d"}
	if got := o.OptionsPath(); got != "m/d_options.json" {
		t.Errorf("expected m/d_options.json, got %s", got)
	}
	if got := o.DefinitionPath(); got != "m/d_pipeline.json" {
		t.Errorf("expected m/d_pipeline.json, got %s", got)
	}
	if got := o.EntryPath("corr", "0123456789abcdef0123", 7); got != "m/d/corr/0123456789abcdef/000007.json" {
		t.Errorf("unexpected entry path %s", got)
	}
}

func TestManager_OptionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newLocalManager(t)

	if _, err := m.LoadOptions(ctx); !dyneerrors.HasCode(err, dyneerrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND before save, got %v", err)
	}
	if err := m.SaveOptions(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := m.LoadOptions(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != m.Options() {
		t.Errorf("expected %+v, got %+v", m.Options(), got)
	}
}

func TestManager_DefinitionRoundTripAndDrift(t *testing.T) {
	ctx := context.Background()
	m, _ := newLocalManager(t)

	def := definition.Definition{
		definition.NewEntry("source.Noise", pipe.Params{"duration": 10, "fs": 100, "win_len": 1.0, "win_disp": 0.5}),
		definition.NewEntry("adjacency.Correlation", pipe.Params{"cache": true}),
	}

	drift, err := m.DetectDrift(ctx, def)
	if err != nil || drift {
		t.Errorf("expected no drift without stored record, got (%v, %v)", drift, err)
	}

	if err := m.SavePipelineDefinition(ctx, def); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	loaded, err := m.LoadPipelineDefinition(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	canonical, _ := def.Canonical()
	if !loaded.Equal(canonical) {
		t.Errorf("expected round trip identity, got %+v", loaded)
	}

	drift, _ = m.DetectDrift(ctx, def)
	if drift {
		t.Error("expected no drift for identical definition")
	}

	changed := definition.Definition{def[0], definition.NewEntry("adjacency.Correlation", pipe.Params{"cache": false})}
	drift, _ = m.DetectDrift(ctx, changed)
	if !drift {
		t.Error("expected drift for changed parameters")
	}
}

func TestManager_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	m, _ := newLocalManager(t)
	key := EntryKey{Pipe: "corr", Hash: "abcdef0123456789abcdef", Window: 3, Cache: true}

	calls := 0
	compute := func(context.Context) (pipe.Packet, error) {
		calls++
		return testPacket(3), nil
	}

	out, hit, err := m.GetOrCompute(ctx, key, compute)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if out.Data[0][1] != 0.25 {
		t.Errorf("unexpected output %+v", out.Data)
	}

	// A second run reads the stored entry.
	m.BeginRun()
	out, hit, err = m.GetOrCompute(ctx, key, compute)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("expected compute once, got %d", calls)
	}
	if out.Window.Index != 3 || out.Rows.Names[1] != "b" {
		t.Errorf("expected stored packet, got %+v", out)
	}
	if s := m.Stats(); s.Hits != 1 || s.Misses != 0 {
		t.Errorf("expected 1 hit after BeginRun, got %+v", s)
	}
}

func TestManager_ChangedHashMisses(t *testing.T) {
	ctx := context.Background()
	m, _ := newLocalManager(t)
	compute := func(context.Context) (pipe.Packet, error) { return testPacket(0), nil }

	_, _, _ = m.GetOrCompute(ctx, EntryKey{Pipe: "corr", Hash: "aaaaaaaaaaaaaaaa1", Cache: true}, compute)
	_, hit, _ := m.GetOrCompute(ctx, EntryKey{Pipe: "corr", Hash: "bbbbbbbbbbbbbbbb1", Cache: true}, compute)
	if hit {
		t.Error("expected miss for a different parameter hash")
	}
}

func TestManager_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	m, store := newLocalManager(t)

	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, _ := m.GetOrCompute(ctx, EntryKey{Pipe: "corr", Hash: "h", Window: 0}, func(context.Context) (pipe.Packet, error) {
			calls++
			return testPacket(0), nil
		})
		if hit {
			t.Error("expected no hit with caching disabled")
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 computes, got %d", calls)
	}
	files, _ := store.List(ctx, "mouse/session1/")
	if len(files) != 0 {
		t.Errorf("expected nothing written, got %+v", files)
	}
}

func TestManager_CorruptEntryRecomputes(t *testing.T) {
	ctx := context.Background()
	m, store := newLocalManager(t)
	key := EntryKey{Pipe: "corr", Hash: "0123456789abcdef", Window: 1, Cache: true}

	if err := storage.WriteAll(ctx, store, m.Options().EntryPath(key.Pipe, key.Hash, key.Window), []byte("{not json")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := 0
	_, hit, err := m.GetOrCompute(ctx, key, func(context.Context) (pipe.Packet, error) {
		calls++
		return testPacket(1), nil
	})
	if err != nil || hit || calls != 1 {
		t.Errorf("expected recompute, got hit=%v calls=%d err=%v", hit, calls, err)
	}
	if len(m.Warnings()) != 1 {
		t.Errorf("expected 1 warning, got %v", m.Warnings())
	}

	// The entry was rewritten and now hits.
	m.BeginRun()
	if _, hit, _ := m.GetOrCompute(ctx, key, nil); !hit {
		t.Error("expected repaired entry to hit")
	}
}

func TestManager_ComputeErrorPropagates(t *testing.T) {
	m, _ := newLocalManager(t)
	boom := errors.New("boom")
	_, _, err := m.GetOrCompute(context.Background(), EntryKey{Pipe: "corr", Hash: "h", Cache: true}, func(context.Context) (pipe.Packet, error) {
		return pipe.Packet{}, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected compute error, got %v", err)
	}
}

func TestManager_WriteOncePerRun(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Memory: storage.NewMemory()}
	m, _ := NewManager(store, testOptions("/w"), nil)
	key := EntryKey{Pipe: "corr", Hash: "h", Window: 0, Cache: true}

	// Force misses by making every read fail as not found.
	store.hideReads = true
	for i := 0; i < 3; i++ {
		_, _, _ = m.GetOrCompute(ctx, key, func(context.Context) (pipe.Packet, error) { return testPacket(0), nil })
	}
	if store.uploads != 1 {
		t.Errorf("expected 1 upload, got %d", store.uploads)
	}
}

func TestManager_WriteFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Memory: storage.NewMemory(), failUploads: true}
	m, _ := NewManager(store, testOptions("/w"), nil, WithRetry(resilience.RetryConfig{
		MaxAttempts: 2, InitialBackoff: time.Millisecond,
	}))

	out, hit, err := m.GetOrCompute(ctx, EntryKey{Pipe: "corr", Hash: "h", Cache: true}, func(context.Context) (pipe.Packet, error) {
		return testPacket(0), nil
	})
	if err != nil || hit {
		t.Fatalf("expected computed result despite write failure, got hit=%v err=%v", hit, err)
	}
	if len(out.Data) != 2 {
		t.Errorf("expected computed packet, got %+v", out)
	}
	if store.uploads != 2 {
		t.Errorf("expected 2 attempts, got %d", store.uploads)
	}
	if len(m.Warnings()) != 1 {
		t.Errorf("expected 1 warning, got %v", m.Warnings())
	}
}

// countingStore wraps Memory to count uploads and inject failures.
type countingStore struct {
	*storage.Memory
	uploads     int
	failUploads bool
	hideReads   bool
}

func (c *countingStore) Upload(ctx context.Context, path string, r io.Reader) error {
	c.uploads++
	if c.failUploads {
		return errors.New("disk full")
	}
	return c.Memory.Upload(ctx, path, r)
}

func (c *countingStore) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	if c.hideReads {
		return nil, storage.ErrNotFound
	}
	return c.Memory.Download(ctx, path)
}
