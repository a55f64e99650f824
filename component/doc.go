// Package component defines lifecycle-managed infrastructure for a dyne
// process: storage backends, the run log database, the Kafka event
// publisher and the status server all implement Component and are started
// in registration order and stopped in reverse.
package component
