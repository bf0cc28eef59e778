package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "DB_PATH", "PORT", "ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, []string{
		"ADMIN_EMAIL is not set",
		"ADMIN_PASSWORD is not set",
		"SESSION_SECRET is not set",
	}, cfg.Warnings)
}

func TestLoadFile_ReadsDotEnvAndEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := writeDotEnv(t, `APP_ENV=Production
PORT=9999
ADMIN_EMAIL=admin@example.com
ADMIN_PASSWORD=hunter2
SESSION_SECRET=abc
LOG_FORMAT=json
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Empty(t, cfg.Warnings)

	lc := cfg.Logging()
	assert.Equal(t, "json", lc.Format)
	assert.False(t, lc.Development)
}

func TestLoadFile_RejectsMalformedValues(t *testing.T) {
	for key, value := range map[string]string{
		"APP_ENV":     "staging",
		"PORT":        "eighty",
		"LOG_FORMAT":  "xml",
		"LOG_LEVEL":   "trace",
		"ADMIN_EMAIL": "not-an-email",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := LoadFile(filepath.Join(t.TempDir(), ".env"))
			assert.Error(t, err)
		})
	}
}
