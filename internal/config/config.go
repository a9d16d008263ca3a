// ABOUTME: Lifetracker configuration management with backend selection.
// ABOUTME: Handles settings, logging preferences, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/lifetracker/internal/storage"
	"github.com/sirupsen/logrus"
)

// Backend names accepted in the config file.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config stores lifetracker configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger", or "memory".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts lifetracker.db here. Badger keeps its files under badger/.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/lifetracker.
	DataDir string `json:"data_dir,omitempty"`

	// HealthExport is the health export file the import reads.
	// Defaults to health-export.json in the data directory.
	HealthExport string `json:"health_export,omitempty"`

	// HealthAuthorized records that access to health data was granted.
	HealthAuthorized bool `json:"health_authorized,omitempty"`

	// HealthLastSync and HealthLastStatus describe the most recent finished import.
	HealthLastSync   *time.Time `json:"health_last_sync,omitempty"`
	HealthLastStatus string     `json:"health_last_status,omitempty"`

	// LogLevel is a logrus level name. Defaults to "warn".
	LogLevel string `json:"log_level,omitempty"`

	// LogJSON switches log output to JSON.
	LogJSON bool `json:"log_json,omitempty"`

	// LogFile sends logs to a rotated file instead of stderr.
	LogFile string `json:"log_file,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetHealthExport returns the health export path with ~ expanded.
func (c *Config) GetHealthExport() string {
	if c.HealthExport == "" {
		return filepath.Join(c.GetDataDir(), "health-export.json")
	}
	return ExpandPath(c.HealthExport)
}

// GetLogLevel returns the configured log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return c.LogLevel
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(log logrus.FieldLogger) (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.Open(storage.DBPath(dataDir))
	case BackendBadger:
		dir := filepath.Join(dataDir, "badger")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create badger directory: %w", err)
		}
		return storage.OpenBadger(dir, log)
	case BackendMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lifetracker", "config.json")
}

// Load reads config from disk. A missing file yields defaults.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
