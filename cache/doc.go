// Package cache persists everything a (model, dataset) run needs to be
// reproduced: the runtime options, the pipeline definition and every cached
// stage output, one object per window.
//
// Layout, relative to the store root (the working path for the local store):
//
//	<model>/<dataset>_options.json
//	<model>/<dataset>_pipeline.json
//	<model>/<dataset>/<pipe_name>/<hash[:16]>/<window:06d>.json
//
// The hash segment is the stage's chained parameter hash, so changing a
// stage's parameters, or any stage upstream of it, lands in a fresh
// directory instead of reusing stale results.
package cache
