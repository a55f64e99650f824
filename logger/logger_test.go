package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: "json"}
	return newWithWriter(cfg, "dyne-test", &buf), &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestWithRun(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithRun("run-1", "model-a", "set-b").WithComponent("engine").Info("started")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	for key, want := range map[string]string{
		FieldRunID:     "run-1",
		FieldModel:     "model-a",
		FieldDataset:   "set-b",
		FieldComponent: "engine",
		"message":      "started",
	} {
		if m[key] != want {
			t.Errorf("expected %s=%q, got %v", key, want, m[key])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Info("hidden")
	l.Warn("shown", Fields(FieldWindow, 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	m := decodeLine(t, lines[0])
	if m[FieldWindow] != float64(3) {
		t.Errorf("expected window=3, got %v", m[FieldWindow])
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger(t, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info message should be written")
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithError(errors.New("disk full")).Error("write failed")
	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m[FieldError] != "disk full" {
		t.Errorf("expected error field, got %v", m[FieldError])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing", Fields("a", 1))
	l.WithComponent("x").Warn("still nothing")
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}

	d := DurationFields("upload", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", d[FieldDuration])
	}

	e := ErrorFields("download", errors.New("gone"))
	if e[FieldOperation] != "download" || e[FieldError] != "gone" {
		t.Errorf("unexpected error fields %v", e)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json stdout", Config{Level: "debug", Format: "json", Output: "stdout"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"bad output", Config{Output: "file"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
