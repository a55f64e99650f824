// Package errors defines the structured error type shared by every dyne
// package. Errors carry a machine-readable code, optional details and a
// cause; construction, per-window processing and storage failures each have
// their own codes so callers can classify them without string matching.
package errors
