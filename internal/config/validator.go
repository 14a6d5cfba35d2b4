package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateDatabase(&cfg.Database)
	v.validateAPI(&cfg.API)
	v.validateServer(&cfg.Server)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "json": true,
	}
	if !validFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, text, json")
	}
}

func (v *Validator) validateDatabase(cfg *DatabaseConfig) {
	if strings.TrimSpace(cfg.URL) == "" {
		v.addError("database.url", "", "connection string required (set DATABASE_URL)")
	}

	validDrivers := map[string]bool{
		"": true, "pgx": true, "pq": true, "sqlite": true,
	}
	if !validDrivers[cfg.Driver] {
		v.addError("database.driver", cfg.Driver, "must be one of: pgx, pq, sqlite (or empty to infer)")
	}

	if cfg.MaxOpenConns < 1 {
		v.addError("database.max_open_conns", cfg.MaxOpenConns, "must be >= 1")
	}
	if cfg.MaxIdleConns < 0 {
		v.addError("database.max_idle_conns", cfg.MaxIdleConns, "must be >= 0")
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		v.addError("database.max_idle_conns", cfg.MaxIdleConns, "must be <= database.max_open_conns")
	}
	if cfg.ConnMaxLifetime < 0 {
		v.addError("database.conn_max_lifetime", cfg.ConnMaxLifetime, "must not be negative")
	}
	if cfg.ConnMaxIdleTime < 0 {
		v.addError("database.conn_max_idle_time", cfg.ConnMaxIdleTime, "must not be negative")
	}
	if cfg.ConnectTimeout <= 0 {
		v.addError("database.connect_timeout", cfg.ConnectTimeout, "must be positive")
	}
}

func (v *Validator) validateAPI(cfg *APIConfig) {
	if cfg.NotFoundMode != NotFoundLegacy && cfg.NotFoundMode != NotFoundUniform {
		v.addError("api.not_found_mode", cfg.NotFoundMode, "must be one of: legacy, uniform")
	}
	if cfg.RequestTimeout <= 0 {
		v.addError("api.request_timeout", cfg.RequestTimeout, "must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		v.addError("api.max_body_bytes", cfg.MaxBodyBytes, "must be positive")
	}
	if strings.TrimSpace(cfg.CORS.AllowOrigin) == "" {
		v.addError("api.cors.allow_origin", cfg.CORS.AllowOrigin, "origin required (use * for any)")
	}
	if cfg.CORS.MaxAge < 0 {
		v.addError("api.cors.max_age", cfg.CORS.MaxAge, "must not be negative")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Host == "" {
		v.addError("server.host", cfg.Host, "host required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.ShutdownTimeout <= 0 {
		v.addError("server.shutdown_timeout", cfg.ShutdownTimeout, "must be positive")
	}
}

// Validate is a convenience wrapper around NewValidator().Validate.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
