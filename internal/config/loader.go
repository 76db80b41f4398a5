// Package config loads and validates the YAML application configuration,
// with SC_-prefixed environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/softcover/softcover/internal/pdfpage"
	"github.com/softcover/softcover/internal/sanitize"
	"github.com/softcover/softcover/pkg/types"
)

// Load reads and parses the configuration file, applies environment
// overrides, and validates the result.
func Load(configPath string) (*types.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and fills engine defaults.
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Adapter {
	case "local":
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	default:
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	switch cfg.Library.Backend {
	case "", "storage":
	case "bolt":
		if cfg.Library.Bolt.Path == "" {
			return fmt.Errorf("library bolt path is required")
		}
	default:
		return fmt.Errorf("invalid library backend: %s (must be 'storage' or 'bolt')", cfg.Library.Backend)
	}

	if cfg.Extract.LineTolerance <= 0 {
		cfg.Extract.LineTolerance = pdfpage.DefaultLineTolerance
	}
	if cfg.Extract.MaxTitleLength <= 0 {
		cfg.Extract.MaxTitleLength = sanitize.DefaultMaxTitleLength
	}

	return nil
}

// applyEnvOverrides applies SC_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *types.Config) {
	if val := os.Getenv("SC_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SC_SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	if val := os.Getenv("SC_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("SC_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("SC_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("SC_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("SC_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("SC_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("SC_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}

	if val := os.Getenv("SC_LIBRARY_BACKEND"); val != "" {
		cfg.Library.Backend = val
	}
	if val := os.Getenv("SC_LIBRARY_BOLT_PATH"); val != "" {
		cfg.Library.Bolt.Path = val
	}
}

// GetDefault returns a default configuration.
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/softcover/storage",
			},
		},
		Library: types.LibraryConfig{
			Backend: "storage",
		},
		Extract: types.ExtractConfig{
			LineTolerance:  pdfpage.DefaultLineTolerance,
			MaxTitleLength: sanitize.DefaultMaxTitleLength,
		},
	}
}
