package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/dyne/component"
	"github.com/kbukum/dyne/logger"
)

// Component owns a Producer for the component registry.
type Component struct {
	cfg      Config
	log      *logger.Logger
	producer *Producer
	mu       sync.Mutex
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a Kafka component. The producer is created on Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("kafka")}
}

// Name returns the component name.
func (c *Component) Name() string { return "kafka" }

// Producer returns the producer, or nil before Start.
func (c *Component) Producer() *Producer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.producer
}

// Start creates the producer.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.producer != nil {
		return nil
	}
	p, err := NewProducer(c.cfg, c.log)
	if err != nil {
		return err
	}
	c.producer = p
	return nil
}

// Stop closes the producer.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.producer == nil {
		return nil
	}
	err := c.producer.Close()
	c.producer = nil
	return err
}

// Health reports whether the producer is open. Broker reachability shows up
// as publish failures rather than here.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.producer == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "kafka not started"}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("brokers=%v topic=%s", c.cfg.Brokers, c.producer.Config().Topic),
	}
}
