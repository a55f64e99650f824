package runlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/storage"
)

// JSONL appends records as JSON lines to the options' RunsPath in store.
// Appends read the existing log and write it back whole, so a namespace
// must have a single writer.
type JSONL struct {
	store storage.Storage
	path  string
	mu    sync.Mutex
}

// NewJSONL returns a JSON-lines registry for the namespace of opts.
func NewJSONL(store storage.Storage, opts cache.Options) *JSONL {
	return &JSONL{store: store, path: opts.RunsPath()}
}

// Path returns the log's key in the store.
func (j *JSONL) Path() string { return j.path }

// Append adds rec as the last line.
func (j *JSONL) Append(ctx context.Context, rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return errors.Internal(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	existing, err := storage.ReadAll(ctx, j.store, j.path)
	if err != nil && !storage.IsNotFound(err) {
		return errors.Storage("read", j.path, err)
	}
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		existing = append(existing, '\n')
	}
	existing = append(existing, line...)
	existing = append(existing, '\n')

	if err := storage.WriteAll(ctx, j.store, j.path, existing); err != nil {
		return errors.Storage("write", j.path, err)
	}
	return nil
}

// List decodes every line. A missing log is empty.
func (j *JSONL) List(ctx context.Context) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := storage.ReadAll(ctx, j.store, j.path)
	if err != nil {
		if storage.IsNotFound(err) {
			return []Record{}, nil
		}
		return nil, errors.Storage("read", j.path, err)
	}

	records := make([]Record, 0)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errors.Storage("decode", j.path, fmt.Errorf("line %d: %w", n, err))
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Storage("read", j.path, err)
	}
	return records, nil
}

var _ Registry = (*JSONL)(nil)
