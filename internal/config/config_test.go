package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Load default config when no config file is present", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "http://localhost:8000", cfg.Client.BaseURL)
		assert.Equal(t, time.Duration(0), cfg.Client.Timeout)
		assert.Equal(t, "@every 4m", cfg.Session.RefreshSchedule)

		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 5*time.Minute, cfg.Server.Auth.AccessTTL)
		assert.Equal(t, 24*time.Hour, cfg.Server.Auth.RefreshTTL)
		assert.True(t, cfg.Server.RateLimit.Enabled)
		assert.Equal(t, "@every 10m", cfg.Server.RateLimit.CleanupSchedule)
		assert.Equal(t, int32(10), cfg.Database.MaxConns)
		assert.Equal(t, 5, cfg.Database.ConnectAttempts)
		assert.Equal(t, 2*time.Second, cfg.Database.ConnectRetryDelay)

		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "json", cfg.Logger.Encoding)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.False(t, cfg.RabbitMQ.Enabled)
	})

	t.Run("Environment overrides the base URL", func(t *testing.T) {
		t.Setenv("CLIENT_BASEURL", "http://10.0.0.5:8000/")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "http://10.0.0.5:8000", cfg.Client.BaseURL)
	})

	t.Run("Config file values are read", func(t *testing.T) {
		dir := t.TempDir()
		content := "client:\n  baseURL: http://crm.internal:9000\n  timeout: 10s\nlogger:\n  level: debug\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "http://crm.internal:9000", cfg.Client.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
		assert.Equal(t, "debug", cfg.Logger.Level)
	})

	t.Run("Dotenv file is loaded before viper", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SESSION_REFRESHSCHEDULE=@every 1m\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("SESSION_REFRESHSCHEDULE") })

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "@every 1m", cfg.Session.RefreshSchedule)
	})

	t.Run("Return error when config file is invalid", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("client: [unclosed"), 0644))

		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}
