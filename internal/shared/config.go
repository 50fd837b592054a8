package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every leaf setting can be overridden with a TASKX_* environment variable (see [ApplyEnv]).
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Tracker  TrackerConfig  `toml:"tracker"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"TASKX_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"TASKX_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"TASKX_DATABASE_MAX_IDLE_CONNS"`
	BusyTimeout  int    `toml:"busy_timeout_ms" env:"TASKX_DATABASE_BUSY_TIMEOUT_MS"`
}

// ServerConfig contains settings for the local dashboard API.
type ServerConfig struct {
	Host      string  `toml:"host" env:"TASKX_SERVER_HOST"`
	Port      int     `toml:"port" env:"TASKX_SERVER_PORT"`
	RateLimit float64 `toml:"rate_limit" env:"TASKX_SERVER_RATE_LIMIT"`
	Burst     int     `toml:"burst" env:"TASKX_SERVER_BURST"`
}

// LogConfig controls log verbosity and the TUI log file.
type LogConfig struct {
	Level string `toml:"level" env:"TASKX_LOG_LEVEL"`
	File  string `toml:"file" env:"TASKX_LOG_FILE"`
}

// TrackerConfig contains settings for the progress and analytics engines.
type TrackerConfig struct {
	Timezone    string `toml:"timezone" env:"TASKX_TIMEZONE"`
	CatalogPath string `toml:"catalog_path" env:"TASKX_CATALOG_PATH"`
	ExportDir   string `toml:"export_dir" env:"TASKX_EXPORT_DIR"`
}

// Address returns the host:port pair the dashboard server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location resolves the configured timezone. Empty or "Local" uses the system zone.
func (t TrackerConfig) Location() (*time.Location, error) {
	if t.Timezone == "" || t.Timezone == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidConfig, t.Timezone, err)
	}
	return loc, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Settings missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads variables from the dotenv file at dotenvPath (if present) and then applies TASKX_* overrides to config.
//
// Variables already set in the process environment win over the dotenv file.
func ApplyEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: failed to parse environment: %v", ErrInvalidConfig, err)
	}

	return nil
}

// ResolveConfig loads config from path when the file exists, falling back to defaults, then applies environment overrides.
func ResolveConfig(path, dotenvPath string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config, dotenvPath); err != nil {
		return nil, err
	}

	return config, nil
}
