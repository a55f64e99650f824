package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/database"
	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/storage"
)

func testOptions() cache.Options {
	return cache.Options{WorkingPath: "/w", ModelName: "mouse", DatasetName: "s1"}
}

func startEnd(runID string) (Record, Record) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(3 * time.Second)
	start := Record{
		RunID:            runID,
		Phase:            PhaseStart,
		Status:           StatusRunning,
		Options:          testOptions(),
		Definition:       definition.Definition{definition.NewEntry("source.Noise", pipe.Params{"fs": 100.0})},
		PipeVersions:     map[string]string{"Noise_0": "1.0.0"},
		FrameworkVersion: "v0.3.0",
		StartedAt:        started,
	}
	end := start
	end.Phase = PhaseEnd
	end.Status = StatusCompleted
	end.EndedAt = &ended
	end.Windows = 19
	end.Completed = 18
	end.Skipped = []int{4}
	end.Warnings = []string{"cache write failed"}
	return start, end
}

func exerciseRegistry(t *testing.T, reg Registry) {
	t.Helper()
	ctx := context.Background()

	records, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty log, got %d records", len(records))
	}

	s1, e1 := startEnd("run-1")
	s2, _ := startEnd("run-2")
	for _, r := range []Record{s1, e1, s2} {
		if err := reg.Append(ctx, r); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	records, err = reg.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1].Phase != PhaseEnd || records[1].Windows != 19 || records[1].Skipped[0] != 4 {
		t.Errorf("unexpected end record %+v", records[1])
	}
	if records[1].EndedAt == nil || !records[1].EndedAt.Equal(*e1.EndedAt) {
		t.Errorf("expected end time %v, got %v", e1.EndedAt, records[1].EndedAt)
	}
	if !records[0].Definition.Equal(s1.Definition) {
		t.Errorf("expected definition snapshot, got %+v", records[0].Definition)
	}

	latest := Latest(records)
	if len(latest) != 2 || latest[0].Status != StatusCompleted || latest[1].Status != StatusRunning {
		t.Errorf("unexpected latest view %+v", latest)
	}
}

func TestJSONL(t *testing.T) {
	store := storage.NewMemory()
	reg := NewJSONL(store, testOptions())
	if reg.Path() != "mouse/s1_runs.jsonl" {
		t.Errorf("expected mouse/s1_runs.jsonl, got %s", reg.Path())
	}
	exerciseRegistry(t, reg)

	data, _ := storage.ReadAll(context.Background(), store, reg.Path())
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestJSONL_CorruptLine(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	reg := NewJSONL(store, testOptions())
	_ = storage.WriteAll(ctx, store, reg.Path(), []byte("{oops\n"))

	if _, err := reg.List(ctx); err == nil {
		t.Error("expected decode error")
	}
}

func TestSQL(t *testing.T) {
	db, err := database.New(context.Background(), database.Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, logger.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	reg, err := NewSQL(db, testOptions())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	exerciseRegistry(t, reg)

	// Another namespace in the same table stays separate.
	other := testOptions()
	other.DatasetName = "s2"
	otherReg, _ := NewSQL(db, other)
	records, _ := otherReg.List(context.Background())
	if len(records) != 0 {
		t.Errorf("expected empty namespace, got %d records", len(records))
	}
}
