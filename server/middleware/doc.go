// Package middleware holds the Gin middleware used by the status server.
package middleware
