package server

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/dyne/engine"
)

// Status is a point-in-time view of a run.
type Status struct {
	RunID      string       `json:"run_id,omitempty"`
	State      engine.State `json:"state"`
	Completed  int          `json:"completed"`
	Skipped    []int        `json:"skipped,omitempty"`
	LastWindow *int         `json:"last_window,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// StatusTracker folds engine events into a Status.
type StatusTracker struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusTracker returns a tracker reporting IDLE.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: Status{State: engine.StateIdle, UpdatedAt: time.Now().UTC()}}
}

// OnEvent implements engine.Subscriber.
func (t *StatusTracker) OnEvent(_ context.Context, ev engine.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.status
	s.RunID = ev.RunID
	s.UpdatedAt = ev.Time.UTC()
	switch ev.Type {
	case engine.EventStateChanged:
		s.State = ev.State
		if ev.State == engine.StateRunning {
			started := s.UpdatedAt
			s.StartedAt = &started
		}
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
		}
	case engine.EventWindowCompleted:
		idx := ev.Window.Index
		s.LastWindow = &idx
		s.Completed++
	case engine.EventWindowSkipped:
		idx := ev.Window.Index
		s.LastWindow = &idx
		s.Skipped = append(s.Skipped, idx)
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
		}
	}
}

// Snapshot returns a copy of the current status.
func (t *StatusTracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.status
	s.Skipped = append([]int(nil), t.status.Skipped...)
	return s
}
