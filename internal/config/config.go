package config

import (
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig configures the shared connection pool.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	Driver          string        `mapstructure:"driver" yaml:"driver"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// RedactedURL returns the connection string with any password masked.
func (c DatabaseConfig) RedactedURL() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.User == nil {
		return c.URL
	}
	if _, ok := u.User.Password(); !ok {
		return c.URL
	}
	return strings.Replace(u.Redacted(), "xxxxx", "[REDACTED]", 1)
}

// Not-found modes for API.NotFoundMode.
const (
	// NotFoundLegacy keeps the per-entity contract: checklists answer 404,
	// spheres and tasks answer 200 with a null body.
	NotFoundLegacy = "legacy"
	// NotFoundUniform answers 404 for every missing entity.
	NotFoundUniform = "uniform"
)

// APIConfig configures request handling.
type APIConfig struct {
	NotFoundMode   string        `mapstructure:"not_found_mode" yaml:"not_found_mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	CORS           CORSConfig    `mapstructure:"cors" yaml:"cors"`
}

// CORSConfig configures the cross-origin headers sent with every response.
type CORSConfig struct {
	AllowOrigin string `mapstructure:"allow_origin" yaml:"allow_origin"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
}

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}
