package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imagecheck/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 3, cfg.Validator.Concurrency)
	require.Equal(t, 8*time.Second, cfg.Validator.AttemptTimeout)
	require.Equal(t, 2, cfg.Validator.MaxAttempts)
	require.Equal(t, time.Second, cfg.Validator.BackoffBase)
	require.Equal(t, 500*time.Millisecond, cfg.Validator.BatchPause)
	require.Equal(t, int64(10*1024*1024), cfg.Validator.MaxContentLength)
	require.Equal(t, 5*time.Minute, cfg.Validator.CacheTTL)
}

func TestLoad_YamlOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yaml := `
environment: production
http:
  addr: ":9090"
validator:
  concurrency: 5
  cacheTTL: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 5, cfg.Validator.Concurrency)
	require.Equal(t, time.Minute, cfg.Validator.CacheTTL)
	// untouched keys keep their defaults
	require.Equal(t, 2, cfg.Validator.MaxAttempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
