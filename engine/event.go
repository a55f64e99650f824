package engine

import (
	"context"
	"time"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
)

// EventType names an engine event.
type EventType string

const (
	EventStateChanged    EventType = "state_changed"
	EventWindowCompleted EventType = "window_completed"
	EventWindowSkipped   EventType = "window_skipped"
)

// Event reports engine progress.
type Event struct {
	Type  EventType
	RunID string
	Time  time.Time

	// State and Previous are set for state_changed.
	State    State
	Previous State

	// Window is set for window events.
	Window pipe.Window
	// Output is the last stage's packet for window_completed.
	Output *pipe.Packet
	// Stage is the pipe_name that failed for window_skipped.
	Stage string
	// Err is the failure behind window_skipped, or behind a FAILED state.
	Err error
}

// Subscriber receives engine events. OnEvent runs on the driver goroutine
// and delays the next window until it returns.
type Subscriber interface {
	OnEvent(ctx context.Context, ev Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, ev Event)

// OnEvent calls f.
func (f SubscriberFunc) OnEvent(ctx context.Context, ev Event) { f(ctx, ev) }

// ProgressLogger logs run progress, one line per window.
type ProgressLogger struct {
	log *logger.Logger
}

// NewProgressLogger returns a Subscriber that reports progress through log.
func NewProgressLogger(log *logger.Logger) *ProgressLogger {
	return &ProgressLogger{log: log.WithComponent("progress")}
}

// OnEvent logs ev.
func (p *ProgressLogger) OnEvent(_ context.Context, ev Event) {
	switch ev.Type {
	case EventStateChanged:
		fields := logger.Fields(logger.FieldRunID, ev.RunID, logger.FieldState, string(ev.State))
		if ev.Err != nil {
			fields[logger.FieldError] = ev.Err.Error()
			p.log.Error("run state changed", fields)
			return
		}
		p.log.Info("run state changed", fields)
	case EventWindowCompleted:
		p.log.Info("window completed", logger.Fields(
			logger.FieldWindow, ev.Window.Index,
			"start", ev.Window.Start,
		))
	case EventWindowSkipped:
		fields := logger.Fields(logger.FieldWindow, ev.Window.Index, logger.FieldPipe, ev.Stage)
		if ev.Err != nil {
			fields[logger.FieldError] = ev.Err.Error()
		}
		p.log.Warn("window skipped", fields)
	}
}
