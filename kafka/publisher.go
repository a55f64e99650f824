package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/dyne/engine"
	"github.com/kbukum/dyne/logger"
)

// EventPublisher publishes engine events. Failed publishes are logged and
// counted; they never affect the run.
type EventPublisher struct {
	producer    *Producer
	topic       string
	includeData bool
	log         *logger.Logger
	failures    atomic.Int64
}

var _ engine.Subscriber = (*EventPublisher)(nil)

// NewEventPublisher creates a subscriber that writes to the producer's topic.
func NewEventPublisher(p *Producer, log *logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	cfg := p.Config()
	return &EventPublisher{
		producer:    p,
		topic:       cfg.Topic,
		includeData: cfg.IncludeData,
		log:         log.WithComponent("kafka.publisher"),
	}
}

// Failures returns the number of events that could not be published.
func (e *EventPublisher) Failures() int64 { return e.failures.Load() }

// OnEvent publishes ev, keyed by run id so a run's events stay ordered.
func (e *EventPublisher) OnEvent(ctx context.Context, ev engine.Event) {
	value, err := json.Marshal(ev.Message(e.includeData))
	if err != nil {
		e.fail(ev, err)
		return
	}
	msg := kafkago.Message{
		Topic: e.topic,
		Key:   []byte(ev.RunID),
		Value: value,
		Time:  ev.Time,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := e.producer.WriteMessages(ctx, msg); err != nil {
		e.fail(ev, err)
	}
}

func (e *EventPublisher) fail(ev engine.Event, err error) {
	e.failures.Add(1)
	e.log.Warn("event not published", logger.Fields(
		logger.FieldRunID, ev.RunID,
		"type", string(ev.Type),
		logger.FieldError, err.Error(),
	))
}
