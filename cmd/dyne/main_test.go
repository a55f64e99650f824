package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const networkYAML = `
pipeline:
  - [source.Noise, {n_node: 3, duration: 10, sample_rate: 100, win_len: 1.0, win_disp: 0.5}]
  - [adjacency.Correlation, {cache: true}]
  - [netviz.Console, {output: discard}]
`

const illegalYAML = `
pipeline:
  - [source.Noise]
  - [nodetopo.Strength]
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write definition: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := newCLI(&stdout, &stderr).run(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func TestCommandsRegistered(t *testing.T) {
	c := newCLI(nil, nil)
	for _, name := range []string{"run", "validate", "pipes", "runs"} {
		if c.find(name) == nil {
			t.Errorf("expected command %s", name)
		}
	}
}

func TestCLI_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, usageExitCode},
		{"help", []string{"help"}, successExitCode},
		{"unknown", []string{"explode"}, usageExitCode},
		{"bad flag", []string{"pipes", "--nope"}, usageExitCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d (%s)", tt.code, code, stderr)
			}
		})
	}
}

func TestCLI_Pipes(t *testing.T) {
	code, out, stderr := execute(t, "pipes", "--links", "--logging.level=error")
	if code != successExitCode {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	for _, want := range []string{"source.Noise", "adjacency.Correlation", "netviz.Console", "source -> ["} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCLI_Validate(t *testing.T) {
	code, out, stderr := execute(t, "validate", "-d", writeDefinition(t, networkYAML), "--logging.level=error")
	if code != successExitCode {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if !strings.Contains(out, "definition ok: 3 stages") || !strings.Contains(out, "Correlation_1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	code, _, stderr = execute(t, "validate", "-d", writeDefinition(t, illegalYAML), "--logging.level=error")
	if code != errorExitCode {
		t.Errorf("expected failure, got %d", code)
	}
	if !strings.Contains(stderr, "ILLEGAL_LINK") {
		t.Errorf("expected ILLEGAL_LINK, got %s", stderr)
	}

	if code, _, _ := execute(t, "validate", "--logging.level=error"); code != errorExitCode {
		t.Errorf("expected failure without a definition, got %d", code)
	}
}

func TestCLI_RunThenRuns(t *testing.T) {
	for _, backend := range []string{runLogJSONL, runLogSQL} {
		t.Run(backend, func(t *testing.T) {
			work := t.TempDir()
			common := []string{
				"--working_path=" + work, "--model_name=mouse", "--dataset_name=s1",
				"--logging.level=error", "--run_log=" + backend,
			}

			args := append([]string{"run", "-q", "-d", writeDefinition(t, networkYAML)}, common...)
			code, out, stderr := execute(t, args...)
			if code != successExitCode {
				t.Fatalf("expected success, got %d: %s", code, stderr)
			}
			if !strings.Contains(out, "COMPLETED: 19/19 windows completed") {
				t.Errorf("unexpected run output: %s", out)
			}
			if !strings.Contains(out, "cache 0 hits / 19 misses") {
				t.Errorf("expected 19 cache misses, got %s", out)
			}
			if _, err := os.Stat(filepath.Join(work, "mouse", "s1_pipeline.json")); err != nil {
				t.Errorf("expected definition record, got %v", err)
			}

			code, out, stderr = execute(t, append([]string{"runs"}, common...)...)
			if code != successExitCode {
				t.Fatalf("expected success, got %d: %s", code, stderr)
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != 2 || !strings.Contains(lines[1], "completed") {
				t.Errorf("expected one completed run, got:\n%s", out)
			}

			code, out, _ = execute(t, append([]string{"runs", "--all", "--json"}, common...)...)
			if code != successExitCode {
				t.Fatalf("expected success, got %d", code)
			}
			if n := strings.Count(out, `"run_id"`); n != 2 {
				t.Errorf("expected start and end records, got %d", n)
			}
		})
	}
}

func TestCLI_RunRequiresOptions(t *testing.T) {
	code, _, stderr := execute(t, "run", "-d", writeDefinition(t, networkYAML), "--logging.level=error")
	if code != errorExitCode {
		t.Errorf("expected failure, got %d", code)
	}
	if !strings.Contains(stderr, "INVALID_OPTIONS") {
		t.Errorf("expected INVALID_OPTIONS, got %s", stderr)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.WorkingPath = "/data"
	cfg.RunLog = runLogSQL
	cfg.ApplyDefaults()

	if cfg.Storage.BasePath != "/data" {
		t.Errorf("expected local store under working_path, got %q", cfg.Storage.BasePath)
	}
	if cfg.Database.DSN != filepath.Join("/data", "dyne.db") {
		t.Errorf("expected sqlite under working_path, got %q", cfg.Database.DSN)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	cfg.RunLog = "csv"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown run log")
	}
}
