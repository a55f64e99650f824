package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/dyne/component"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/storage"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	rdb, err := Dial(context.Background(), Config{Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, prefix, 0), mini
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mini := newTestStore(t, "dyne")

	if err := storage.WriteAll(ctx, s, "m/d/corr/abc/000000.json", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !mini.Exists("dyne:m/d/corr/abc/000000.json") {
		t.Error("expected prefixed key in redis")
	}

	got, err := storage.ReadAll(ctx, s, "m/d/corr/abc/000000.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Errorf("expected payload, got %s", got)
	}

	if err := s.Delete(ctx, "m/d/corr/abc/000000.json"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := s.Download(ctx, "m/d/corr/abc/000000.json"); !storage.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "")

	for _, p := range []string{"m/d/b/1.json", "m/d/a/1.json", "m/x.json"} {
		if err := storage.WriteAll(ctx, s, p, []byte("12345")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	files, err := s.List(ctx, "m/d/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].Path != "m/d/a/1.json" || files[0].Size != 5 {
		t.Errorf("unexpected first entry: %+v", files[0])
	}
	if files[0].LastModified.IsZero() {
		t.Error("expected modification time")
	}
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	mini := miniredis.RunT(t)
	rdb, err := Dial(ctx, Config{Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer rdb.Close()
	s := NewStore(rdb, "", time.Minute)

	if err := storage.WriteAll(ctx, s, "k", []byte("v")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	mini.FastForward(2 * time.Minute)
	ok, err := s.Exists(ctx, "k")
	if err != nil || ok {
		t.Errorf("expected expired key, got (%v, %v)", ok, err)
	}
}

func TestStorageFactory(t *testing.T) {
	mini := miniredis.RunT(t)
	s, err := storage.New(storage.Config{Provider: storage.ProviderRedis, Prefix: "p"}, &Config{Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := s.(*Store); !ok {
		t.Errorf("expected *redis.Store, got %T", s)
	}

	_, err = storage.New(storage.Config{Provider: storage.ProviderRedis}, "bad", logger.NewNop())
	if err == nil {
		t.Error("expected error for wrong provider config type")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Addr: "x:1", TTL: "soon"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid ttl")
	}
}

func TestDial_Unreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Dial(ctx, Config{Addr: addr, MaxRetries: 1, DialTimeout: "200ms"}, nil); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestStorageComponent(t *testing.T) {
	mini := miniredis.RunT(t)
	ctx := context.Background()
	c := storage.NewComponent(storage.Config{Provider: storage.ProviderRedis}, &Config{Addr: mini.Addr()}, logger.NewNop())

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}
	s := c.Storage().(*Store)
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("expected ping on a closed store to fail")
	}
}
