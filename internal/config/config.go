package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Timer   TimerConfig   `yaml:"timer"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the persistence provider for the training log.
type StorageConfig struct {
	Driver     string         `yaml:"driver"` // sqlite, postgres or memory
	Path       string         `yaml:"path"`   // sqlite data directory
	Migrations string         `yaml:"migrations"`
	Postgres   DatabaseConfig `yaml:"postgres"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // text or json
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

type TimerConfig struct {
	TickMS int `yaml:"tick_ms"`
}

// Interval is the refresh period of running exercise timers.
func (t TimerConfig) Interval() time.Duration {
	return time.Duration(t.TickMS) * time.Millisecond
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// An empty path skips the file and starts from defaults.
// Env vars use the prefix TRAINTRACK_ and underscore-separated paths:
//
//	TRAINTRACK_SERVER_HOST, TRAINTRACK_SERVER_PORT,
//	TRAINTRACK_STORAGE_DRIVER, TRAINTRACK_STORAGE_PATH,
//	TRAINTRACK_DB_HOST, TRAINTRACK_DB_PORT, TRAINTRACK_DB_NAME,
//	TRAINTRACK_DB_USER, TRAINTRACK_DB_PASSWORD, TRAINTRACK_DB_SSLMODE,
//	TRAINTRACK_LOG_LEVEL, TRAINTRACK_LOG_FILE, TRAINTRACK_TIMER_TICK_MS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data"
	}
	if cfg.Storage.Migrations == "" {
		cfg.Storage.Migrations = "migrations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 20
	}
	if cfg.Timer.TickMS == 0 {
		cfg.Timer.TickMS = 100
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAINTRACK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRAINTRACK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRAINTRACK_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TRAINTRACK_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TRAINTRACK_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("TRAINTRACK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("TRAINTRACK_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("TRAINTRACK_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("TRAINTRACK_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("TRAINTRACK_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("TRAINTRACK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRAINTRACK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TRAINTRACK_TIMER_TICK_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Timer.TickMS = ms
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, postgres, memory", c.Storage.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	if c.Timer.TickMS < 0 {
		return fmt.Errorf("timer.tick_ms must be positive")
	}
	return nil
}
