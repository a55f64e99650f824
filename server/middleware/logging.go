package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dyne/logger"
)

// quietPaths are polled and not worth a log line on success.
var quietPaths = map[string]bool{
	"/health": true,
	"/status": true,
}

// RequestLogger returns a Gin middleware that logs method, path, status and
// latency of every request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if quietPaths[c.Request.URL.Path] && status < 400 {
			return
		}
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if id, ok := c.Get("request_id"); ok {
			fields["request_id"] = id
		}
		logByStatus(log, fields, status)
	}
}

// logByStatus logs request fields at a level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
