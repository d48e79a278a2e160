// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/spendsense/spendsense/internal/common"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Config is the resolved application configuration. Values come from the
// config file, SPENDSENSE_ environment variables, and defaults, in that
// order of precedence.
type Config struct {
	DatabasePath string
	DefaultUser  int64
	Server       ServerConfig
}

// SetDefaults registers every configuration default with Viper. Call once
// before reading values.
func SetDefaults() {
	viper.SetDefault("database.path", filepath.Join("~", ".config", "spendsense", "spendsense.db"))
	viper.SetDefault("default_user", 1)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load resolves the configuration from Viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(viper.GetString("database.path")),
		DefaultUser:  viper.GetInt64("default_user"),
		Server: ServerConfig{
			Addr:            viper.GetString("server.addr"),
			ReadTimeout:     viper.GetDuration("server.read_timeout"),
			WriteTimeout:    viper.GetDuration("server.write_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr", common.ErrMissingConfig)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server timeouts must not be negative", common.ErrInvalidConfig)
	}
	if c.DefaultUser <= 0 {
		return fmt.Errorf("%w: default_user must be positive", common.ErrInvalidConfig)
	}
	return nil
}
