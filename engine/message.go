package engine

import (
	"time"

	"github.com/kbukum/dyne/pipe"
)

// Message is the JSON form of an Event used by event sinks.
type Message struct {
	RunID    string            `json:"run_id"`
	Type     string            `json:"type"`
	Time     time.Time         `json:"time"`
	State    string            `json:"state,omitempty"`
	Previous string            `json:"previous,omitempty"`
	Window   *pipe.Window      `json:"window,omitempty"`
	Stage    string            `json:"stage,omitempty"`
	Error    string            `json:"error,omitempty"`
	Rows     int               `json:"rows,omitempty"`
	Cols     int               `json:"cols,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Data     [][]float64       `json:"data,omitempty"`
}

// Message converts ev. The output matrix is only copied when includeData is
// set; its shape and provenance always are.
func (ev Event) Message(includeData bool) Message {
	m := Message{
		RunID: ev.RunID,
		Type:  string(ev.Type),
		Time:  ev.Time,
		Stage: ev.Stage,
	}
	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	switch ev.Type {
	case EventStateChanged:
		m.State = string(ev.State)
		m.Previous = string(ev.Previous)
	default:
		w := ev.Window
		m.Window = &w
	}
	if ev.Output != nil {
		m.Rows, m.Cols = ev.Output.Shape()
		m.Meta = ev.Output.Meta
		if includeData {
			m.Data = ev.Output.Data
		}
	}
	return m
}
