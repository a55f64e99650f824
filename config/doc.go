// Package config loads dyne's process configuration.
//
// Values are layered, lowest priority first: struct defaults applied by
// ApplyDefaults, a YAML/JSON config file, a .env file, DYNE_* environment
// variables and finally command-line flags. Nested keys map to environment
// variables by joining path segments with underscores, so storage.s3.bucket
// is read from DYNE_STORAGE_S3_BUCKET.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("dyne", &cfg, config.WithFlags(cmd.Flags()))
package config
