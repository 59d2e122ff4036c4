package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-steen/attendance-tracker/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ATTENDANCE_CONFIG_PATH",
	"ATTENDANCE_STORAGE_BACKEND",
	"ATTENDANCE_DB_PATH",
	"ATTENDANCE_REDIS_ADDR",
	"ATTENDANCE_LOG_PATH",
	"ATTENDANCE_LOG_LEVEL",
	"ATTENDANCE_DEFAULT_TARGET",
	"ATTENDANCE_STABLE_CARD_IDS",
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
	require.Equal(t, "attendance.sqlite", cfg.Storage.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 75, cfg.Ledger.DefaultTargetPercentage)
	require.False(t, cfg.Ledger.StableCardIDs)

	level, err := cfg.Log.ZerologLevel()
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, level)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
storage:
  backend: redis
  redis_addr: cache:6379
log:
  level: debug
ledger:
  default_target_percentage: 80
  stable_card_ids: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("ATTENDANCE_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.BackendRedis, cfg.Storage.Backend)
	require.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	// untouched keys keep their defaults
	require.Equal(t, "attendance:", cfg.Storage.RedisPrefix)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 80, cfg.Ledger.DefaultTargetPercentage)
	require.True(t, cfg.Ledger.StableCardIDs)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  path: from-file.sqlite\n"), 0o600))
	t.Setenv("ATTENDANCE_CONFIG_PATH", path)
	t.Setenv("ATTENDANCE_DB_PATH", "from-env.sqlite")
	t.Setenv("ATTENDANCE_DEFAULT_TARGET", "65")
	t.Setenv("ATTENDANCE_STABLE_CARD_IDS", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "from-env.sqlite", cfg.Storage.Path)
	require.Equal(t, 65, cfg.Ledger.DefaultTargetPercentage)
	require.True(t, cfg.Ledger.StableCardIDs)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		msg  string
	}{
		{"bad target", "ATTENDANCE_DEFAULT_TARGET", "lots", "invalid ATTENDANCE_DEFAULT_TARGET"},
		{"bad bool", "ATTENDANCE_STABLE_CARD_IDS", "maybe", "invalid ATTENDANCE_STABLE_CARD_IDS"},
		{"bad backend", "ATTENDANCE_STORAGE_BACKEND", "floppy", `unknown storage backend "floppy"`},
		{"bad level", "ATTENDANCE_LOG_LEVEL", "loud", `invalid log level "loud"`},
		{"missing file", "ATTENDANCE_CONFIG_PATH", "/does/not/exist.yaml", "read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}
