package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0.0"
mode: "dev"
addr: ":9090"
database:
  host: "127.0.0.1"
  port: 3306
  user: "boiadda"
  password: "secret"
  dbname: "boiadda"
auth:
  secret: "s3cr3t"
  token_ttl_minutes: 60
cors_origins: "http://localhost:3000, http://localhost:5173"
seed_demo_data: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "boiadda", cfg.DB.DBName)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMins)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOriginList())
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: "dev"
database:
  host: "127.0.0.1"
  port: 3306
  user: "u"
  password: "p"
  dbname: "d"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1440, cfg.Auth.TokenTTLMins)
	assert.False(t, cfg.SeedDemo)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
