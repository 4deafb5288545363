package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every ROUTERGATE_ env var that Load() reads.
var allConfigKeys = []string{
	"ROUTERGATE_CONFIG_FILE",
	"ROUTERGATE_LISTEN_ADDR",
	"ROUTERGATE_DB_PATH",
	"ROUTERGATE_ENCRYPTION_KEY",
	"ROUTERGATE_JWT_SECRET",
	"ROUTERGATE_SESSION_TTL",
	"ROUTERGATE_RESET_BASE_URL",
	"ROUTERGATE_PROXY_TIMEOUT",
	"ROUTERGATE_ADMIN_EMAIL",
	"ROUTERGATE_ADMIN_PASSWORD",
	"ROUTERGATE_LOG_LEVEL",
	"ROUTERGATE_LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all ROUTERGATE_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routergate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.ListenAddr)
	assert.Equal(t, "routergate.db", cfg.DBPath)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.ProxyTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.JWTSecret)
	assert.True(t, cfg.UsesDefaultEncryptionKey())
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ROUTERGATE_LISTEN_ADDR", "0.0.0.0:8080")
	t.Setenv("ROUTERGATE_DB_PATH", "/data/rg.db")
	t.Setenv("ROUTERGATE_ENCRYPTION_KEY", "short")
	t.Setenv("ROUTERGATE_JWT_SECRET", "jwt-secret")
	t.Setenv("ROUTERGATE_SESSION_TTL", "30m")
	t.Setenv("ROUTERGATE_RESET_BASE_URL", "https://gate.example.com/reset")
	t.Setenv("ROUTERGATE_PROXY_TIMEOUT", "3s")
	t.Setenv("ROUTERGATE_ADMIN_EMAIL", "ops@example.com")
	t.Setenv("ROUTERGATE_ADMIN_PASSWORD", "changeme123")
	t.Setenv("ROUTERGATE_LOG_LEVEL", "debug")
	t.Setenv("ROUTERGATE_LOG_FORMAT", "json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, "/data/rg.db", cfg.DBPath)
	assert.Equal(t, "short", cfg.EncryptionKey)
	assert.False(t, cfg.UsesDefaultEncryptionKey())
	assert.Equal(t, "jwt-secret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "https://gate.example.com/reset", cfg.ResetBaseURL)
	assert.Equal(t, 3*time.Second, cfg.ProxyTimeout)
	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
	assert.Equal(t, "changeme123", cfg.AdminPassword)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `
listen_addr: "0.0.0.0:7000"
db_path: /var/lib/routergate/rg.db
session_ttl: 2h
proxy_timeout: 15s
log_format: json
`)
	t.Setenv("ROUTERGATE_CONFIG_FILE", path)
	t.Setenv("ROUTERGATE_LISTEN_ADDR", "127.0.0.1:7001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddr, "env overrides file")
	assert.Equal(t, "/var/lib/routergate/rg.db", cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.ProxyTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{"invalid session ttl", map[string]string{"ROUTERGATE_SESSION_TTL": "soon"}, "", "ROUTERGATE_SESSION_TTL"},
		{"invalid proxy timeout", map[string]string{"ROUTERGATE_PROXY_TIMEOUT": "10"}, "", "ROUTERGATE_PROXY_TIMEOUT"},
		{"negative ttl", map[string]string{"ROUTERGATE_SESSION_TTL": "-1h"}, "", "session ttl"},
		{"empty encryption key", map[string]string{"ROUTERGATE_ENCRYPTION_KEY": ""}, "", "encryption key"},
		{"bad log format", map[string]string{"ROUTERGATE_LOG_FORMAT": "xml"}, "", "log format"},
		{"malformed file", nil, "listen_addr: [unterminated", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv("ROUTERGATE_CONFIG_FILE", writeConfigFile(t, tt.file))
			}

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("ROUTERGATE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"chatty", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
