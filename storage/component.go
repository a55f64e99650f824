package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/dyne/component"
	"github.com/kbukum/dyne/logger"
)

// Component wraps Storage and implements component.Component for lifecycle management.
type Component struct {
	storage     Storage
	cfg         Config
	providerCfg any
	log         *logger.Logger
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log,
	}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	return c.storage
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

// Stop releases the storage backend, closing it when it holds a connection.
func (c *Component) Stop(_ context.Context) error {
	s := c.storage
	c.storage = nil
	if closer, ok := s.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// pinger is implemented by backends with a cheaper liveness check.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health pings the backend, or falls back to an Exists call.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.storage == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if p, ok := c.storage.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			h.Status = component.StatusUnhealthy
			h.Message = err.Error()
		}
		return h
	}
	if _, err := c.storage.Exists(ctx, ".health"); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	}
	return h
}
