package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file in the test working directory: defaults apply.
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "driftwatch", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Buffer.Capacity)
	assert.Equal(t, 300*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 10, cfg.Monitor.MinSamples)
	assert.Equal(t, 0.05, cfg.Drift.PThreshold)
	assert.Equal(t, 0.5, cfg.Drift.ShareThreshold)
	assert.Equal(t, "./reports", cfg.Reports.Dir)
	assert.False(t, cfg.Database.Enabled)
	assert.True(t, cfg.Prometheus.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: driftwatch-test
  mode: test
  log_level: debug
server:
  port: 9090
buffer:
  capacity: 50
monitor:
  interval: 60s
  min_samples: 5
drift:
  p_threshold: 0.01
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "driftwatch-test", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Mode)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Buffer.Capacity)
	assert.Equal(t, 60*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 5, cfg.Monitor.MinSamples)
	assert.Equal(t, 0.01, cfg.Drift.PThreshold)

	// Unset keys keep their defaults.
	assert.Equal(t, 0.5, cfg.Drift.ShareThreshold)
	assert.Equal(t, "./reports", cfg.Reports.Dir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DRIFTWATCH_SERVER_PORT", "7777")
	t.Setenv("DRIFTWATCH_MONITOR_MIN_SAMPLES", "25")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Monitor.MinSamples)
}

func validConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:     "driftwatch",
			Mode:     "development",
			LogLevel: "info",
		},
		Server:  config.ServerConfig{Port: 8000},
		Buffer:  config.BufferConfig{Capacity: 500},
		Monitor: config.MonitorConfig{Interval: 300 * time.Second, MinSamples: 10},
		Drift:   config.DriftConfig{PThreshold: 0.05, ShareThreshold: 0.5},
		Reports: config.ReportsConfig{Dir: "./reports"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "missing app name",
			mutate:  func(c *config.Config) { c.App.Name = "" },
			wantErr: "app.name is required",
		},
		{
			name:    "bad mode",
			mutate:  func(c *config.Config) { c.App.Mode = "staging" },
			wantErr: "app.mode",
		},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.App.LogLevel = "verbose" },
			wantErr: "app.log_level",
		},
		{
			name:    "bad port",
			mutate:  func(c *config.Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero buffer capacity",
			mutate:  func(c *config.Config) { c.Buffer.Capacity = 0 },
			wantErr: "buffer.capacity",
		},
		{
			name:    "zero interval",
			mutate:  func(c *config.Config) { c.Monitor.Interval = 0 },
			wantErr: "monitor.interval",
		},
		{
			name:    "min samples above capacity",
			mutate:  func(c *config.Config) { c.Monitor.MinSamples = 1000 },
			wantErr: "monitor.min_samples must not exceed buffer.capacity",
		},
		{
			name:    "p threshold out of range",
			mutate:  func(c *config.Config) { c.Drift.PThreshold = 1.5 },
			wantErr: "drift.p_threshold",
		},
		{
			name:    "share threshold out of range",
			mutate:  func(c *config.Config) { c.Drift.ShareThreshold = 0 },
			wantErr: "drift.share_threshold",
		},
		{
			name:    "missing reports dir",
			mutate:  func(c *config.Config) { c.Reports.Dir = "" },
			wantErr: "reports.dir",
		},
		{
			name: "database enabled without host",
			mutate: func(c *config.Config) {
				c.Database.Enabled = true
				c.Database.Port = 5432
				c.Database.Name = "driftwatch"
				c.Database.MaxConnections = 10
			},
			wantErr: "database.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "driftwatch",
		User:     "admin",
		Password: "secret",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=driftwatch")
	assert.Contains(t, dsn, "sslmode=disable")
}
