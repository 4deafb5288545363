// Package config loads application configuration from an optional YAML file
// and environment variables. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEncryptionKey is used when ROUTERGATE_ENCRYPTION_KEY is unset. It is
// public, so anything sealed with it is only obfuscated.
const DefaultEncryptionKey = "routergate-insecure-development-key"

// Config holds the application configuration.
type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	DBPath        string        `yaml:"db_path"`
	EncryptionKey string        `yaml:"encryption_key"`
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	ResetBaseURL  string        `yaml:"reset_base_url"`
	ProxyTimeout  time.Duration `yaml:"proxy_timeout"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
}

// UsesDefaultEncryptionKey reports whether secrets are sealed with the
// built-in development key.
func (c *Config) UsesDefaultEncryptionKey() bool {
	return c.EncryptionKey == DefaultEncryptionKey
}

func defaults() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:5000",
		DBPath:        "routergate.db",
		EncryptionKey: DefaultEncryptionKey,
		SessionTTL:    12 * time.Hour,
		ResetBaseURL:  "http://localhost:5173/reset-password",
		ProxyTimeout:  10 * time.Second,
		AdminEmail:    "admin@localhost",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// ROUTERGATE_CONFIG_FILE (if set), then ROUTERGATE_* environment variables.
// Optional variables with defaults: ROUTERGATE_LISTEN_ADDR (127.0.0.1:5000),
// ROUTERGATE_DB_PATH (routergate.db), ROUTERGATE_SESSION_TTL (12h),
// ROUTERGATE_PROXY_TIMEOUT (10s), ROUTERGATE_LOG_LEVEL (info),
// ROUTERGATE_LOG_FORMAT (text).
func Load() (*Config, error) {
	cfg := defaults()

	if path, ok := os.LookupEnv("ROUTERGATE_CONFIG_FILE"); ok && path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"ROUTERGATE_LISTEN_ADDR":    &cfg.ListenAddr,
		"ROUTERGATE_DB_PATH":        &cfg.DBPath,
		"ROUTERGATE_ENCRYPTION_KEY": &cfg.EncryptionKey,
		"ROUTERGATE_JWT_SECRET":     &cfg.JWTSecret,
		"ROUTERGATE_RESET_BASE_URL": &cfg.ResetBaseURL,
		"ROUTERGATE_ADMIN_EMAIL":    &cfg.AdminEmail,
		"ROUTERGATE_ADMIN_PASSWORD": &cfg.AdminPassword,
		"ROUTERGATE_LOG_LEVEL":      &cfg.LogLevel,
		"ROUTERGATE_LOG_FORMAT":     &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ROUTERGATE_SESSION_TTL":   &cfg.SessionTTL,
		"ROUTERGATE_PROXY_TIMEOUT": &cfg.ProxyTimeout,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
		}
		*dst = parsed
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.EncryptionKey == "" {
		errs = append(errs, errors.New("encryption key must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL))
	}
	if c.ProxyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("proxy timeout must be positive, got %s", c.ProxyTimeout))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
