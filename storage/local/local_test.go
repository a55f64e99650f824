package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/storage"
)

func TestStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := storage.WriteAll(ctx, s, "m/d/corr/abc/000001.json", []byte("one")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := storage.WriteAll(ctx, s, "m/d/corr/abc/000001.json", []byte("two")); err != nil {
		t.Fatalf("expected overwrite to succeed, got %v", err)
	}

	got, err := storage.ReadAll(ctx, s, "m/d/corr/abc/000001.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(got) != "two" {
		t.Errorf("expected 'two', got %q", got)
	}

	entries, _ := os.ReadDir(filepath.Join(s.BasePath(), "m", "d", "corr", "abc"))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage(t.TempDir())

	_, err := s.Download(ctx, "missing.json")
	if !storage.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ok, err := s.Exists(ctx, "missing.json")
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if err := s.Delete(ctx, "missing.json"); err != nil {
		t.Errorf("expected delete of missing file to succeed, got %v", err)
	}
}

func TestStorage_RejectsEscape(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	// Cleaning against "/" pins traversal inside the base directory.
	full, err := s.resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filepath.Dir(full) != filepath.Join(s.BasePath(), "etc") {
		t.Errorf("expected path inside base, got %s", full)
	}
}

func TestStorage_List(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage(t.TempDir())
	for _, p := range []string{"m/d_options.json", "m/d/a/1.json", "m/d/b/2.json", "other/x.json"} {
		if err := storage.WriteAll(ctx, s, p, []byte("x")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	files, err := s.List(ctx, "m/d/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "m/d/a/1.json" || files[1].Path != "m/d/b/2.json" {
		t.Errorf("unexpected listing: %+v", files)
	}
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.New(storage.Config{Provider: storage.ProviderLocal, BasePath: dir}, nil, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}
