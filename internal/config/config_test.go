package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docgrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.ContextLength)
	assert.Equal(t, []string{".docx"}, cfg.Suffixes)
	assert.Equal(t, ".zip", cfg.ArchiveSuffix)
	assert.Equal(t, "__MACOSX", cfg.JunkMarker)
	assert.Positive(t, cfg.Workers)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
workers: 3
context_length: 0
suffixes: [".docx", ".md"]
include_archives: false
job_ttl: 30m
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Zero(t, cfg.ContextLength, "explicit zero context length")
	assert.Equal(t, []string{".docx", ".md"}, cfg.Suffixes)
	assert.False(t, cfg.IncludeArchives)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 3\n")
	t.Setenv("DOCGREP_WORKERS", "7")
	t.Setenv("DOCGREP_SUFFIXES", ".docx, .txt")
	t.Setenv("DOCGREP_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, []string{".docx", ".txt"}, cfg.Suffixes)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "workers: [not an int\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "job_ttl: soon\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"no suffixes", func(c *Config) { c.Suffixes = nil }},
		{"suffix without dot", func(c *Config) { c.Suffixes = []string{"docx"} }},
		{"archive suffix without dot", func(c *Config) { c.ArchiveSuffix = "zip" }},
		{"negative max bytes", func(c *Config) { c.MaxFileBytes = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero queue", func(c *Config) { c.MaxQueueSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate(), "defaults should validate")
}
