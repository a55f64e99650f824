package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/dyne/component"
)

var _ component.Component = (*Component)(nil)

// Component closes the hub on shutdown so open streams end and the HTTP
// server can drain. Register it after the server so it stops first.
type Component struct {
	hub *Hub
}

// NewComponent wraps hub.
func NewComponent(hub *Hub) *Component {
	return &Component{hub: hub}
}

// Hub returns the wrapped hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start is a no-op; the hub needs no background work.
func (c *Component) Start(_ context.Context) error { return nil }

// Stop disconnects every client.
func (c *Component) Stop(_ context.Context) error {
	c.hub.Close()
	return nil
}

// Health reports the number of connected clients.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.Clients()),
	}
}
