package config

import (
	"fmt"
	"time"

	"github.com/flowboard/flowboard/engine/schedule"
)

// Config is the full application configuration. Values come from defaults,
// then FLOWBOARD_-prefixed environment variables, last one wins.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Slack    SlackConfig    `koanf:"slack"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Runtime  RuntimeConfig  `koanf:"runtime"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"             validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSEnabled     bool          `koanf:"cors_enabled"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig configures the Postgres connection. ConnString wins over the
// individual components when both are set.
type DatabaseConfig struct {
	ConnString  string `koanf:"conn_string"`
	Host        string `koanf:"host"`
	Port        string `koanf:"port"`
	User        string `koanf:"user"`
	Password    string `koanf:"password"`
	DBName      string `koanf:"name"`
	SSLMode     string `koanf:"ssl_mode"`
	AutoMigrate bool   `koanf:"auto_migrate"`
	MaxConns    int32  `koanf:"max_conns"`
}

// SlackConfig configures outbound webhook delivery.
type SlackConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxRetries     uint64        `koanf:"max_retries"`
}

// ScheduleConfig configures the due-date scanner.
type ScheduleConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CronSpec string `koanf:"cron_spec"`
}

// RuntimeConfig holds process-level knobs.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled"`
	LogJSON   bool   `koanf:"log_json"`
	LogSource bool   `koanf:"log_source"`
	Env       string `koanf:"env"        validate:"oneof=development production test"`
}

// Default returns the built-in configuration values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSEnabled:     false,
		},
		Database: DatabaseConfig{
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Password:    "",
			DBName:      "flowboard",
			SSLMode:     "disable",
			AutoMigrate: true,
			MaxConns:    20,
		},
		Slack: SlackConfig{
			RequestTimeout: 10 * time.Second,
			MaxRetries:     3,
		},
		Schedule: ScheduleConfig{
			Enabled:  true,
			CronSpec: schedule.DefaultCronSpec,
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
			LogJSON:  false,
			Env:      "development",
		},
	}
}

// Validate applies the checks struct tags cannot express.
func (c *Config) Validate() error {
	if c.Database.ConnString == "" {
		if c.Database.Host == "" || c.Database.Port == "" ||
			c.Database.User == "" || c.Database.DBName == "" {
			return fmt.Errorf(
				"database configuration incomplete: either conn_string or host/port/user/name required")
		}
	}
	if c.Schedule.Enabled && c.Schedule.CronSpec == "" {
		return fmt.Errorf("schedule cron_spec is required when the scanner is enabled")
	}
	return nil
}
