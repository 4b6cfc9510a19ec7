package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/types"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Stock.CostWindow)
	assert.Equal(t, types.Quantity(100), cfg.Epsilon())
	assert.Equal(t, 15*time.Minute, cfg.Worker.Interval)
	assert.False(t, cfg.Worker.AutoFix)

	sc := cfg.StockCount()
	assert.Equal(t, "SAY", sc.Numbering.Prefix)
	assert.Equal(t, 3, sc.Numbering.PadWidth)
	assert.Equal(t, time.UTC, sc.Location)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restostock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
stock:
  cost_window: 5
  timezone: Europe/Istanbul
worker:
  interval: 1m
`), 0o600))

	t.Setenv("RESTOSTOCK_WORKER_AUTO_FIX", "true")
	t.Setenv("RESTOSTOCK_STOCK_COST_WINDOW", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 7, cfg.Stock.CostWindow)
	assert.Equal(t, time.Minute, cfg.Worker.Interval)
	assert.True(t, cfg.Worker.AutoFix)
	assert.Equal(t, "Europe/Istanbul", cfg.StockCount().Location.String())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"negative epsilon", func(c *Config) { c.Stock.ConsistencyEpsilon = -1 }},
		{"zero window", func(c *Config) { c.Stock.CostWindow = 0 }},
		{"zero pad", func(c *Config) { c.Stock.CountPadWidth = 0 }},
		{"bad zone", func(c *Config) { c.Stock.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Database: DatabaseConfig{DSN: "postgres://x"},
				Stock:    StockConfig{CostWindow: 10, CountPadWidth: 3, Timezone: "UTC"},
			}
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
