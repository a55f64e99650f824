// Package logger wraps zerolog with the structured fields dyne attaches to
// every run: run id, model, dataset, pipe name and window index.
//
//	log := logger.New(&cfg, "dyne").WithComponent("engine")
//	log.Info("window completed", logger.Fields(logger.FieldWindow, 3))
package logger
