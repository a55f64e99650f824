package kafka

import (
	"context"
	"errors"
	"strings"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"broker not available",
	"leader not available",
	"connection closed",
	"dial tcp",
	"network exception",
}

var transientPatterns = []string{
	"temporary",
	"request timed out",
	"not enough replicas",
}

// IsConnectionError checks if a Kafka error is a connection-level error.
func IsConnectionError(err error) bool {
	return err != nil && containsAny(err, connectionPatterns)
}

// IsRetryableError reports whether a failed write is worth repeating.
// It is the retry predicate of Producer.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsConnectionError(err) || containsAny(err, transientPatterns)
}

func containsAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
