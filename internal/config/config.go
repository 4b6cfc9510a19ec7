// Package config loads service configuration from defaults, an optional
// YAML file and RESTOSTOCK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"restostock/internal/core/numerator"
	"restostock/internal/core/types"
	"restostock/internal/domain/documents/stockcount"
	"restostock/internal/infrastructure/storage/postgres"
	"restostock/pkg/logger"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RESTOSTOCK_DATABASE_DSN for database.dsn.
const EnvPrefix = "RESTOSTOCK"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Stock    StockConfig    `mapstructure:"stock"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type StockConfig struct {
	// ConsistencyEpsilon is the tolerance, in consumption units, below which
	// a material total and its stock rows are considered equal.
	ConsistencyEpsilon float64 `mapstructure:"consistency_epsilon"`

	// CostWindow is how many recent costed inbound movements feed the average.
	CostWindow int `mapstructure:"cost_window"`

	CountPrefix   string `mapstructure:"count_prefix"`
	CountPadWidth int    `mapstructure:"count_pad_width"`
	Timezone      string `mapstructure:"timezone"`
}

type WorkerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	AutoFix  bool          `mapstructure:"auto_fix"`
}

type AuditConfig struct {
	// CompressThreshold is the payload size in bytes above which audit
	// changes are stored zstd-compressed.
	CompressThreshold int `mapstructure:"compress_threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.dsn", "postgres://localhost:5432/restostock?sslmode=disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.statement_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("stock.consistency_epsilon", 0.01)
	v.SetDefault("stock.cost_window", 10)
	v.SetDefault("stock.count_prefix", stockcount.NumberPrefix)
	v.SetDefault("stock.count_pad_width", 3)
	v.SetDefault("stock.timezone", "UTC")

	v.SetDefault("worker.interval", 15*time.Minute)
	v.SetDefault("worker.auto_fix", false)

	v.SetDefault("audit.compress_threshold", postgres.DefaultCompressThreshold)
}

// Load reads the configuration. An empty path searches for config.yaml in
// the working directory and ./configs; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Stock.ConsistencyEpsilon < 0 {
		return errors.New("stock.consistency_epsilon cannot be negative")
	}
	if c.Stock.CostWindow <= 0 {
		return errors.New("stock.cost_window must be positive")
	}
	if c.Stock.CountPadWidth <= 0 {
		return errors.New("stock.count_pad_width must be positive")
	}
	if _, err := time.LoadLocation(c.Stock.Timezone); err != nil {
		return fmt.Errorf("stock.timezone: %w", err)
	}
	return nil
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.Log.Level, Development: c.Log.Development}
}

// Pool returns the pgx pool configuration.
func (c *Config) Pool() postgres.PoolConfig {
	cfg := postgres.DefaultPoolConfig(c.Database.DSN)
	if c.Database.MaxConns > 0 {
		cfg.MaxConns = c.Database.MaxConns
	}
	if c.Database.MinConns > 0 {
		cfg.MinConns = c.Database.MinConns
	}
	return cfg
}

// Epsilon returns the consistency tolerance in fixed-point units.
func (c *Config) Epsilon() types.Quantity {
	return types.NewQuantityFromFloat64(c.Stock.ConsistencyEpsilon)
}

// StockCount returns the count workflow configuration.
// Validate must have succeeded.
func (c *Config) StockCount() stockcount.Config {
	loc, err := time.LoadLocation(c.Stock.Timezone)
	if err != nil {
		loc = time.UTC
	}
	numbering := numerator.DefaultConfig(c.Stock.CountPrefix)
	numbering.PadWidth = c.Stock.CountPadWidth
	return stockcount.Config{Numbering: numbering, Location: loc}
}
