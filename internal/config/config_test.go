package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "001-Client reports", cfg.Paths.ClientDir)
	assert.Equal(t, "002-Supervisor_Reports", cfg.Paths.SupervisorDir)
	assert.Equal(t, "diary.sqlite", cfg.Paths.Database)
	assert.Equal(t, "analysis", cfg.Paths.OutputDir)
	assert.Equal(t, "gpt-4o-mini", cfg.Audit.Model)
	assert.Equal(t, 3, cfg.Audit.Samples)
	assert.True(t, cfg.Ingest.UseSupervisor)
	assert.True(t, cfg.Ingest.UseFallback)
}

func TestLoadReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "sitediary")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[paths]
database = "custom.sqlite"

[audit]
model = "gpt-4o"
samples = 7
`), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom.sqlite", cfg.Paths.Database)
	assert.Equal(t, "gpt-4o", cfg.Audit.Model)
	assert.Equal(t, 7, cfg.Audit.Samples)
	// Sections not present in the file keep their defaults.
	assert.Equal(t, "001-Client reports", cfg.Paths.ClientDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SITEDIARY_DATABASE", "/tmp/env.sqlite")
	t.Setenv("SITEDIARY_AUDIT_MODEL", "gpt-4.1-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sqlite", cfg.Paths.Database)
	assert.Equal(t, "gpt-4.1-mini", cfg.Audit.Model)
	assert.Equal(t, "sk-test", cfg.Audit.APIKey)
}

func TestSaveNeverPersistsAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Audit.APIKey = "sk-secret"
	cfg.Paths.Database = "saved.sqlite"
	require.NoError(t, Save(&cfg))

	path, err := ConfigPath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Contains(t, string(data), "saved.sqlite")

	t.Setenv("SITEDIARY_DATABASE", "")
	t.Setenv("OPENAI_API_KEY", "")
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "saved.sqlite", loaded.Paths.Database)
	assert.Equal(t, "", loaded.Audit.APIKey)
}
