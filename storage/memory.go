package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/dyne/logger"
)

func init() {
	RegisterFactory(ProviderMemory, func(Config, any, *logger.Logger) (Storage, error) {
		return NewMemory(), nil
	})
}

type memObject struct {
	data     []byte
	modified time.Time
}

// Memory is an in-process Storage. Objects vanish with the process; it
// backs tests and throwaway runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Upload stores a copy of reader's contents.
func (m *Memory) Upload(_ context.Context, path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: read upload: %w", err)
	}
	m.mu.Lock()
	m.objects[path] = memObject{data: data, modified: time.Now()}
	m.mu.Unlock()
	return nil
}

// Download returns a reader over a stored object.
func (m *Memory) Download(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[path]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes an object.
func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	delete(m.objects, path)
	m.mu.Unlock()
	return nil
}

// Exists reports whether an object is stored at path.
func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	_, ok := m.objects[path]
	m.mu.RUnlock()
	return ok, nil
}

// List returns objects under prefix.
func (m *Memory) List(_ context.Context, prefix string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make([]FileInfo, 0)
	for path, obj := range m.objects {
		if strings.HasPrefix(path, prefix) {
			files = append(files, FileInfo{Path: path, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

var _ Storage = (*Memory)(nil)
