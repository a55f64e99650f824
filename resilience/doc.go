// Package resilience retries transient failures with exponential backoff.
// dyne uses it around cache and run-log writes so that a flaky remote
// store costs a few retries instead of a warning.
package resilience
