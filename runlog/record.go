package runlog

import (
	"context"
	"time"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/definition"
)

// Phase marks when a record was written.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusStopped   = "stopped"
)

// Record is one entry of the run log.
type Record struct {
	RunID            string                `json:"run_id"`
	Phase            Phase                 `json:"phase"`
	Status           string                `json:"status"`
	Options          cache.Options         `json:"options"`
	Definition       definition.Definition `json:"definition"`
	PipeVersions     map[string]string     `json:"pipe_versions,omitempty"`
	FrameworkVersion string                `json:"framework_version"`
	StartedAt        time.Time             `json:"started_at"`
	EndedAt          *time.Time            `json:"ended_at,omitempty"`
	Windows          int                   `json:"windows"`
	Completed        int                   `json:"completed"`
	Skipped          []int                 `json:"skipped,omitempty"`
	CacheHits        int                   `json:"cache_hits"`
	CacheMisses      int                   `json:"cache_misses"`
	Warnings         []string              `json:"warnings,omitempty"`
	Error            string                `json:"error,omitempty"`
}

// Registry is an append-only run log scoped to one (model, dataset).
type Registry interface {
	Append(ctx context.Context, rec Record) error
	// List returns records in append order.
	List(ctx context.Context) ([]Record, error)
}

// Latest folds a record list into the most recent record per run, in order
// of first appearance.
func Latest(records []Record) []Record {
	index := make(map[string]int)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if i, ok := index[r.RunID]; ok {
			out[i] = r
			continue
		}
		index[r.RunID] = len(out)
		out = append(out, r)
	}
	return out
}
