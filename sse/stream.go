package sse

import (
	"context"
	"encoding/json"

	"github.com/kbukum/dyne/engine"
	"github.com/kbukum/dyne/logger"
)

// EventStream is an engine.Subscriber that broadcasts every event to the
// clients following its run.
type EventStream struct {
	hub         *Hub
	includeData bool
}

var _ engine.Subscriber = (*EventStream)(nil)

// NewEventStream returns a subscriber broadcasting through hub. Output
// matrices are only sent when includeData is set.
func NewEventStream(hub *Hub, includeData bool) *EventStream {
	return &EventStream{hub: hub, includeData: includeData}
}

// OnEvent broadcasts ev as a JSON message named after its type.
func (s *EventStream) OnEvent(_ context.Context, ev engine.Event) {
	data, err := json.Marshal(ev.Message(s.includeData))
	if err != nil {
		s.hub.log.Error("event not encoded", logger.Fields(
			logger.FieldRunID, ev.RunID,
			"event", string(ev.Type),
			logger.FieldError, err.Error(),
		))
		return
	}
	msg := Message{Event: string(ev.Type), Data: data}
	s.hub.Broadcast(clientPrefix(allRuns)+"*", msg)
	if ev.RunID != "" && ev.RunID != allRuns {
		s.hub.Broadcast(clientPrefix(ev.RunID)+"*", msg)
	}
}

// allRuns is the run filter of clients following every run.
const allRuns = "all"

// clientPrefix is the id prefix of clients following runID.
func clientPrefix(runID string) string {
	return "run:" + runID + ":"
}
