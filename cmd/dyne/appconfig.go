package main

import (
	"fmt"
	"path/filepath"

	"github.com/kbukum/dyne/cache"
	"github.com/kbukum/dyne/config"
	"github.com/kbukum/dyne/database"
	"github.com/kbukum/dyne/kafka"
	"github.com/kbukum/dyne/observability"
	"github.com/kbukum/dyne/redis"
	"github.com/kbukum/dyne/server"
	"github.com/kbukum/dyne/storage"
	"github.com/kbukum/dyne/version"
)

// Run log backends.
const (
	runLogJSONL = "jsonl"
	runLogSQL   = "sql"
)

// AppConfig is the configuration of the dyne command.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	cache.Options        `yaml:",inline" mapstructure:",squash"`

	RunLog        string               `yaml:"run_log" mapstructure:"run_log"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Kafka         kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section. The local store and the SQLite run log
// default to locations under working_path.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.RunLog == "" {
		c.RunLog = runLogJSONL
	}
	c.Storage.ApplyDefaults()
	if c.Storage.Provider == storage.ProviderLocal && c.Storage.BasePath == "" {
		c.Storage.BasePath = c.WorkingPath
	}
	if c.Storage.Provider == storage.ProviderRedis {
		c.Redis.ApplyDefaults()
	}
	if c.RunLog == runLogSQL && c.Database.DSN == "" && c.WorkingPath != "" {
		c.Database.DSN = filepath.Join(c.WorkingPath, "dyne.db")
	}
	c.Database.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults(c.Name, version.GetShortVersion())
}

// Validate checks the sections in use. The runtime options are checked by
// the commands that need them.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	switch c.RunLog {
	case runLogJSONL:
	case runLogSQL:
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("config.database: %w", err)
		}
	default:
		return fmt.Errorf("config.run_log must be one of [jsonl sql] (got: %s)", c.RunLog)
	}
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("config.kafka: %w", err)
	}
	if c.Server.Enabled {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("config.server: %w", err)
		}
	}
	return c.Observability.Validate()
}

// providerConfig returns the provider-specific storage config.
func (c *AppConfig) providerConfig() any {
	if c.Storage.Provider == storage.ProviderRedis {
		return &c.Redis
	}
	return nil
}
