// Package sse streams engine events to HTTP clients as Server-Sent Events.
//
// A Hub fans messages out to connected clients. Client ids have the form
// "run:<run id>:<connection id>", with run id "all" for clients that follow
// every run. An engine event is broadcast to "run:all:*" and to
// "run:<id>:*".
//
//	hub := sse.NewHub(log)
//	stream := sse.NewEventStream(hub, false)    // engine.Subscriber
//	router.GET("/events", sse.Handler(hub, log)) // ?run=<id> filters
package sse
