// Package server exposes a running pipeline over HTTP using Gin.
//
// Routes:
//
//   - GET  /health: component health
//   - GET  /version: build information
//   - GET  /status: progress of the current run
//   - POST /stop: request a cooperative stop
//   - GET  /runs: the run log of the current (model, dataset)
//
// The server is optional; a pipeline runs the same with or without it.
package server
