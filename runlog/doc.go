// Package runlog keeps the append-only history of pipeline runs. Every run
// appends a record when it starts and another when it reaches a terminal
// state, carrying enough provenance (options, definition, pipe and
// framework versions) to explain the cached results it produced.
//
// Two backends are provided: JSONL appends one JSON document per line to
// <model>/<dataset>_runs.jsonl in a storage.Storage, and SQL stores records
// in a GORM table.
package runlog
