// Package config loads trackmcp configuration from an optional YAML file,
// overlaying environment variables on top. Environment always wins so the
// service behaves the same whether it is configured by file or by deployment
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the standalone MCP tool server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Share exposes the server on all interfaces instead of loopback.
	Share bool `yaml:"share"`
	// CacheRefresh is the project-cache refresh interval in seconds.
	CacheRefresh int `yaml:"cache_refresh"`
}

// StorageConfig locates the trackio SQLite database.
type StorageConfig struct {
	// Path is the full path to the trackio database file. When empty the
	// default trackio location under the user cache directory is used,
	// honoring TRACKIO_DIR.
	Path string `yaml:"path"`
}

// NotifyConfig configures optional NATS publishing of run-update events.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from configPath when the file exists, then applies
// defaults and the environment overlay. A missing file is not an error: the
// environment plus defaults fully describe a working setup.
func Load(configPath string) (*Config, error) {
	// Load .env/.env.local if present. Existing process env is never
	// overwritten.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load env file %s: %w", envPath, err)
			}
			break
		}
	}

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("unmarshal config: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Default returns the configuration produced by defaults and the environment
// overlay alone, without consulting any file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 7861
	}
	if c.Server.CacheRefresh == 0 {
		c.Server.CacheRefresh = 30
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultDatabasePath()
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "trackio.runs"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(EnvTrackioDir); dir != "" {
		c.Storage.Path = filepath.Join(dir, databaseFile)
	}
	if url := os.Getenv(EnvNATSURL); url != "" {
		c.Notify.NATSURL = url
	}
}

const databaseFile = "trackio.db"

// DefaultDatabasePath returns the trackio database location used when no
// explicit path is configured: $TRACKIO_DIR/trackio.db if set, otherwise
// the trackio default under the user cache directory.
func DefaultDatabasePath() string {
	if dir := os.Getenv(EnvTrackioDir); dir != "" {
		return filepath.Join(dir, databaseFile)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", databaseFile)
	}
	return filepath.Join(cacheDir, "huggingface", "trackio", databaseFile)
}
