package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/dyne/logger"
)

// DB wraps a GORM database with dyne logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New opens the SQLite database named by cfg.DSN.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	return Open(ctx, sqlite.Open(cfg.DSN), cfg, log)
}

// Open connects through the given dialector, retrying with a linear backoff
// until cfg.MaxRetries attempts have failed or ctx is done.
func Open(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("database")

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		var db *gorm.DB
		if db, err = gorm.Open(dialector, gormCfg); err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr == nil {
				sqlErr = sqlDB.PingContext(ctx)
			}
			if sqlErr == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				log.Debug("Database connection established", map[string]interface{}{"attempt": attempt})
				return &DB{GormDB: db, log: log, cfg: cfg}, nil
			}
			err = sqlErr
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			log.Warn("Database connection attempt failed, retrying", map[string]interface{}{
				"attempt":         attempt,
				logger.FieldError: err.Error(),
				"backoff":         backoff.String(),
			})
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("database connection canceled during retry: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, err)
}

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate creates or updates the tables for the given models.
func (d *DB) AutoMigrate(models ...interface{}) error {
	if err := d.GormDB.AutoMigrate(models...); err != nil {
		return FromDatabase(err, "migrate")
	}
	return nil
}
