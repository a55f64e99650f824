package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/dyne/logger"
)

// KeepAliveInterval is how often an idle stream gets a comment line.
var KeepAliveInterval = 30 * time.Second

// Handler streams hub messages to the client. The optional run query
// parameter restricts the stream to one run.
func Handler(hub *Hub, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("sse")
	return func(c *gin.Context) {
		run := c.Query("run")
		if run == "" {
			run = allRuns
		}
		id := clientPrefix(run) + uuid.NewString()
		client := hub.Subscribe(id)
		if client == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		defer hub.Unsubscribe(client)

		if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
			log.Debug("write deadline not cleared", logger.ErrorFields("stream", err))
		}
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		fmt.Fprintf(c.Writer, "event: connected\ndata: {\"client_id\":%q}\n\n", id)
		c.Writer.Flush()

		keepAlive := time.NewTicker(KeepAliveInterval)
		defer keepAlive.Stop()
		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-client.Events():
				if !ok {
					return
				}
				fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
				c.Writer.Flush()
			case <-keepAlive.C:
				fmt.Fprintf(c.Writer, ": keepalive %d\n\n", time.Now().Unix())
				c.Writer.Flush()
			}
		}
	}
}
