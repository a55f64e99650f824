package sse

import (
	"path"
	"sync"

	"github.com/kbukum/dyne/logger"
)

// clientBuffer is how many messages a slow client may fall behind before
// messages to it are dropped.
const clientBuffer = 256

// Message is one server-sent event.
type Message struct {
	Event string
	Data  []byte
}

// Client is one connected stream.
type Client struct {
	id     string
	events chan Message
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Events returns the client's message channel. It is closed when the client
// is unsubscribed or the hub closes.
func (c *Client) Events() <-chan Message { return c.events }

// Hub tracks connected clients and broadcasts to them.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
	dropped int
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{log: log.WithComponent("sse"), clients: make(map[string]*Client)}
}

// Subscribe registers a client. It returns nil once the hub is closed.
func (h *Hub) Subscribe(id string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if old, ok := h.clients[id]; ok {
		close(old.events)
	}
	c := &Client{id: id, events: make(chan Message, clientBuffer)}
	h.clients[id] = c
	h.log.Debug("client subscribed", logger.Fields("client_id", id, "clients", len(h.clients)))
	return c
}

// Unsubscribe removes c and closes its channel.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		close(c.events)
	}
}

// Broadcast sends msg to every client whose id matches the glob pattern.
// It never blocks: a client whose buffer is full misses the message.
func (h *Hub) Broadcast(pattern string, msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for id, c := range h.clients {
		matched, err := path.Match(pattern, id)
		if err != nil {
			h.log.Error("bad client pattern", logger.Fields("pattern", pattern, logger.FieldError, err.Error()))
			return sent
		}
		if !matched {
			continue
		}
		select {
		case c.events <- msg:
			sent++
		default:
			h.dropped++
			h.log.Warn("client too slow, message dropped", logger.Fields("client_id", id, "event", msg.Event))
		}
	}
	return sent
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of messages dropped for slow clients.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close disconnects every client. Later subscriptions are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}
