package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/resilience"
)

// Writer is the part of kafka-go's Writer used by Producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes messages with retries.
type Producer struct {
	writer Writer
	cfg    Config
	retry  resilience.RetryConfig
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// NewProducer creates a Producer over a kafka-go Writer built from cfg.
func NewProducer(cfg Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	transport, err := cfg.transport()
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}
	p := newProducer(nil, cfg, log)
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: ParseDuration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  cfg.compression(),
		WriteTimeout: ParseDuration(cfg.WriteTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: " + fmt.Sprintf(msg, args...))
		}),
	}

	p.log.Info("kafka producer initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"compression", cfg.Compression,
	))
	return p, nil
}

// NewWithWriter creates a Producer over an existing writer.
func NewWithWriter(w Writer, cfg Config, log *logger.Logger) *Producer {
	cfg.ApplyDefaults()
	return newProducer(w, cfg, log)
}

func newProducer(w Writer, cfg Config, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.NewNop()
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Retries
	retry.RetryIf = IsRetryableError
	p := &Producer{
		writer: w,
		cfg:    cfg,
		log:    log.WithComponent("kafka.producer"),
	}
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		p.log.Warn("kafka write failed, retrying", logger.Fields(
			"attempt", attempt,
			logger.FieldError, err.Error(),
			"backoff_ms", backoff.Milliseconds(),
		))
	}
	p.retry = retry
	return p
}

// Config returns the producer's effective configuration.
func (p *Producer) Config() Config { return p.cfg }

// WriteMessages sends messages, retrying connection and transient errors.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	err := resilience.RetryFunc(ctx, p.retry, func() error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("write %d message(s): %w", len(msgs), err)
	}
	return nil
}

// Close shuts down the producer. Further writes fail.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("kafka producer closing")
	return p.writer.Close()
}
