package storage

import (
	"context"
	"testing"

	"github.com/kbukum/dyne/logger"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Provider != ProviderLocal {
		t.Errorf("expected provider %q, got %q", ProviderLocal, cfg.Provider)
	}

	s3cfg := Config{Provider: ProviderS3}
	s3cfg.ApplyDefaults()
	if s3cfg.Region != DefaultRegion {
		t.Errorf("expected region %q, got %q", DefaultRegion, s3cfg.Region)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"local ok", Config{Provider: ProviderLocal, BasePath: "/tmp/x"}, false},
		{"local missing path", Config{Provider: ProviderLocal}, true},
		{"s3 ok", Config{Provider: ProviderS3, Bucket: "b", Region: "r"}, false},
		{"s3 missing bucket", Config{Provider: ProviderS3, Region: "r"}, true},
		{"redis", Config{Provider: ProviderRedis}, false},
		{"memory", Config{Provider: ProviderMemory}, false},
		{"unknown", Config{Provider: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_Memory(t *testing.T) {
	s, err := New(Config{Provider: ProviderMemory}, nil, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", s)
	}
}

func TestNew_UnregisteredProvider(t *testing.T) {
	// redis is a valid provider but its package is not imported here.
	_, err := New(Config{Provider: ProviderRedis}, nil, logger.NewNop())
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := WriteAll(ctx, m, "a/b/1.json", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := WriteAll(ctx, m, "a/c/2.json", []byte(`{}`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := ReadAll(ctx, m, "a/b/1.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(got) != `{"x":1}` {
		t.Errorf("expected payload, got %s", got)
	}

	ok, _ := m.Exists(ctx, "a/b/1.json")
	if !ok {
		t.Error("expected object to exist")
	}

	files, _ := m.List(ctx, "a/")
	if len(files) != 2 || files[0].Path != "a/b/1.json" {
		t.Errorf("expected 2 sorted files, got %+v", files)
	}

	if err := m.Delete(ctx, "a/b/1.json"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := ReadAll(ctx, m, "a/b/1.json"); !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	c := NewComponent(Config{Provider: ProviderMemory}, nil, logger.NewNop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != "unhealthy" {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Storage() == nil {
		t.Fatal("expected storage after start")
	}
	if h := c.Health(ctx); h.Status != "healthy" {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
