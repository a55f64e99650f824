// Package engine drives a configured chain over successive windows.
//
// A single driver goroutine pulls one window at a time from the source and
// runs it through every stage in order; window i reaches the last stage
// before window i+1 is drawn. Each stage output passes through the cache
// manager, which either returns a stored result or calls the pipe.
//
// The engine is a small state machine:
//
//	IDLE --Start--> RUNNING --> COMPLETED | FAILED | STOPPED
//
// Progress is reported as Events delivered synchronously, in order, to
// Subscribers; display, the Kafka publisher and the status API are all
// subscribers.
package engine
