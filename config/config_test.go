package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type storeConfig struct {
	Provider string `mapstructure:"provider"`
	BasePath string `mapstructure:"base_path"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Storage       storeConfig `mapstructure:"storage"`
	Brokers       []string    `mapstructure:"brokers"`
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Storage.Provider == "" {
		c.Storage.Provider = "local"
	}
}

func (c *testConfig) Validate() error {
	return c.ServiceConfig.Validate()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }

func TestServiceConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var c ServiceConfig
		c.ApplyDefaults()
		if c.Name != "dyne" || c.Environment != "development" {
			t.Errorf("expected dyne/development, got %s/%s", c.Name, c.Environment)
		}
		if c.Logging.Level != "info" {
			t.Errorf("expected info level, got %s", c.Logging.Level)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("debug lowers log level", func(t *testing.T) {
		c := ServiceConfig{Debug: true}
		c.ApplyDefaults()
		if c.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %s", c.Logging.Level)
		}
	})

	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"bad environment", ServiceConfig{Name: "dyne", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dyne.yml", `
name: lab
environment: staging
logging:
  level: warn
storage:
  base_path: /data/dyne
brokers: [a:9092, b:9092]
`)
	var cfg testConfig
	if err := LoadConfig("dyne", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Name != "lab" || cfg.Environment != "staging" {
		t.Errorf("expected lab/staging, got %s/%s", cfg.Name, cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn, got %s", cfg.Logging.Level)
	}
	if cfg.Storage.BasePath != "/data/dyne" || cfg.Storage.Provider != "local" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if !slices.Equal(cfg.Brokers, []string{"a:9092", "b:9092"}) {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dyne.yml", `
storage:
  provider: s3
  base_path: /from/file
logging:
  level: warn
`)
	t.Setenv("DYNE_STORAGE_BASE_PATH", "/from/env")
	t.Setenv("DYNE_LOGGING_LEVEL", "error")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("logging.level", "", "")
	fs.String("storage.provider", "", "")
	if err := fs.Parse([]string{"--logging.level=debug"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("dyne", &cfg, WithConfigFile(path), WithFlags(fs)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Storage.BasePath != "/from/env" {
		t.Errorf("expected env to beat file, got %s", cfg.Storage.BasePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected flag to beat env, got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Provider != "s3" {
		t.Errorf("expected unset flag to leave file value, got %s", cfg.Storage.Provider)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DYNE_STORAGE_BASE_PATH=/from/dotenv\n")
	t.Setenv("DYNE_STORAGE_BASE_PATH", "")
	os.Unsetenv("DYNE_STORAGE_BASE_PATH")

	var cfg testConfig
	if err := LoadConfig("dyne", &cfg, WithConfigFile(writeFile(t, dir, "dyne.yml", "name: x\n")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Storage.BasePath != "/from/dotenv" {
		t.Errorf("expected dotenv value, got %q", cfg.Storage.BasePath)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		var cfg testConfig
		err := LoadConfig("dyne", &cfg, WithConfigFile("/nonexistent/dyne.yml"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "dyne.yml", "environment: qa\n")
		var cfg testConfig
		err := LoadConfig("dyne", &cfg, WithConfigFile(path))
		if err == nil || !strings.Contains(err.Error(), "config.environment") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		var cfg testConfig
		err := LoadConfig("dyne", &cfg, WithFileSystem(&mockFS{}))
		if err != nil {
			t.Fatalf("expected defaults only, got %v", err)
		}
		if cfg.Name != "dyne" {
			t.Errorf("expected default name, got %s", cfg.Name)
		}
	})
}

func TestResolver(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/dyne.yaml": true,
		"./config/.env":      true,
		"./.env":             true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("dyne", LoaderConfig{})
	if files.ConfigFile != "./config/dyne.yaml" {
		t.Errorf("expected ./config/dyne.yaml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected ./config/.env, got %q", files.EnvFile)
	}

	files = (&Resolver{FileSystem: fs}).ResolveFiles("dyne", LoaderConfig{ConfigFile: "/etc/dyne.yml"})
	if files.ConfigFile != "/etc/dyne.yml" {
		t.Errorf("expected explicit path, got %q", files.ConfigFile)
	}
}

func TestKeyVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"LOGGING_LEVEL", []string{"logging_level", "logging.level"}},
		{"STORAGE_S3_BUCKET", []string{"storage_s3_bucket", "storage.s3.bucket", "storage.s3_bucket"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := keyVariants(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
