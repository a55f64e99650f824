package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderRedis, func(cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		rc := &Config{}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("redis: expected *redis.Config, got %T", providerCfg)
			}
			rc = pc
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rdb, err := Dial(ctx, *rc, log)
		if err != nil {
			return nil, err
		}
		s := NewStore(rdb, cfg.Prefix, rc.ttl())
		s.owned = true
		return s, nil
	})
}

const scanBatch = 256

// Store implements storage.Storage on top of Redis strings. Each object is
// one key; its modification time lives in a sibling key suffixed ":mtime".
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	// owned stores close their client.
	owned bool
}

// NewStore creates a Store. ttl of zero keeps objects forever.
func NewStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: strings.TrimSuffix(prefix, ":"), ttl: ttl}
}

func (s *Store) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + ":" + path
}

func (s *Store) path(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+":")
}

// Upload stores the reader's contents under path.
func (s *Store) Upload(ctx context.Context, path string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: read upload: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(path), data, s.ttl)
	pipe.Set(ctx, s.key(path)+":mtime", time.Now().UnixMilli(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storage: redis set: %w", err)
	}
	return nil
}

// Download returns a reader over the object at path.
func (s *Store) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := s.rdb.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: redis get: %w", err)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

// Delete removes the object at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.rdb.Del(ctx, s.key(path), s.key(path)+":mtime").Err(); err != nil {
		return fmt.Errorf("storage: redis del: %w", err)
	}
	return nil
}

// Exists reports whether an object is stored at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("storage: redis exists: %w", err)
	}
	return n > 0, nil
}

// List scans keys under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	match := escapeGlob(s.key(prefix)) + "*"
	files := make([]storage.FileInfo, 0)

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("storage: redis scan: %w", err)
		}
		for _, k := range keys {
			if strings.HasSuffix(k, ":mtime") {
				continue
			}
			fi := storage.FileInfo{Path: s.path(k)}
			if n, err := s.rdb.StrLen(ctx, k).Result(); err == nil {
				fi.Size = n
			}
			if ms, err := s.rdb.Get(ctx, k+":mtime").Int64(); err == nil {
				fi.LastModified = time.UnixMilli(ms)
			}
			files = append(files, fi)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return ping(ctx, s.rdb)
}

// Close releases the client when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	s.owned = false
	return s.rdb.Close()
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

var _ storage.Storage = (*Store)(nil)
