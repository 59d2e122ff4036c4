package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// These constants refer to the storage backends the app can persist to.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config defines application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Ledger  LedgerConfig  `yaml:"ledger"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type LedgerConfig struct {
	DefaultTargetPercentage int  `yaml:"default_target_percentage"`
	StableCardIDs           bool `yaml:"stable_card_ids"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			Path:        "attendance.sqlite",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "attendance:",
		},
		Log: LogConfig{
			Path:  "attendance.log",
			Level: "info",
		},
		Ledger: LedgerConfig{
			DefaultTargetPercentage: 75,
		},
	}

	if path := os.Getenv("ATTENDANCE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if backend := os.Getenv("ATTENDANCE_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dbPath := os.Getenv("ATTENDANCE_DB_PATH"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if addr := os.Getenv("ATTENDANCE_REDIS_ADDR"); addr != "" {
		cfg.Storage.RedisAddr = addr
	}
	if logPath := os.Getenv("ATTENDANCE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if level := os.Getenv("ATTENDANCE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if targetStr := os.Getenv("ATTENDANCE_DEFAULT_TARGET"); targetStr != "" {
		target, err := strconv.Atoi(targetStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ATTENDANCE_DEFAULT_TARGET: %w", err)
		}
		cfg.Ledger.DefaultTargetPercentage = target
	}
	if stableStr := os.Getenv("ATTENDANCE_STABLE_CARD_IDS"); stableStr != "" {
		stable, err := strconv.ParseBool(stableStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ATTENDANCE_STABLE_CARD_IDS: %w", err)
		}
		cfg.Ledger.StableCardIDs = stable
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}

	return nil
}

// ZerologLevel parses the configured level name.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	return level, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
