package server

import (
	"context"

	"github.com/kbukum/dyne/component"
)

const componentName = "http-server"

var _ component.Component = (*Component)(nil)

// Component wraps Server for the component registry.
type Component struct {
	server  *Server
	started bool
}

// NewComponent returns a component.Component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (c *Component) Start(ctx context.Context) error {
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Stop gracefully shuts down the underlying HTTP server.
func (c *Component) Stop(ctx context.Context) error {
	c.started = false
	return c.server.Stop(ctx)
}

// Health reports whether the server is listening.
func (c *Component) Health(_ context.Context) component.Health {
	if c.started {
		return component.Health{Name: componentName, Status: component.StatusHealthy, Message: c.server.Addr()}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "HTTP server not started"}
}
