package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./logs", cfg.LogDir)
	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, 8080, cfg.ListenPort)

	assert.Equal(t, 10, cfg.Defaults.WindowMinutes)
	assert.Equal(t, 15, cfg.Defaults.AgentWindowMinutes)
	assert.Equal(t, 1000, cfg.Defaults.MaxLines)
	assert.Equal(t, 5, cfg.Defaults.MaxFiles)
	assert.Equal(t, 500, cfg.Defaults.MaxLinesPerFile)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.False(t, cfg.AI.Configured())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `log_dir: /var/log/robot
format: text
listen_port: 9090
defaults:
  window_minutes: 20
  max_files: 3
ai:
  api_key: file-key
  model: gpt-4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".roblog.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/log/robot", cfg.LogDir)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 9090, cfg.ListenPort)
	assert.Equal(t, 20, cfg.Defaults.WindowMinutes)
	assert.Equal(t, 3, cfg.Defaults.MaxFiles)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4", cfg.AI.Model)

	// Values the file does not set keep their defaults.
	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, 15, cfg.Defaults.AgentWindowMinutes)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".roblog.yaml"), []byte("{broken yaml"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ROBLOG_LOG_DIR", "/env/logs")
	t.Setenv("ROBLOG_FORMAT", "text")
	t.Setenv("ROBLOG_QUIET", "true")
	t.Setenv("ROBLOG_VERBOSE", "1")
	t.Setenv("ROBLOG_LISTEN_PORT", "7070")
	t.Setenv("ROBLOG_API_KEY", "env-key")
	t.Setenv("ROBLOG_MODEL", "env-model")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/env/logs", cfg.LogDir)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 7070, cfg.ListenPort)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "env-model", cfg.AI.Model)
	assert.True(t, cfg.AI.Configured())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".roblog.yaml"), []byte("log_dir: /file/logs\n"), 0o644))
	chdir(t, dir)
	t.Setenv("ROBLOG_LOG_DIR", "/env/logs")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/logs", cfg.LogDir)
}

func TestLoad_BadPortEnvIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ROBLOG_LISTEN_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ListenPort)
}

// chdir switches the working directory for the test and restores it on
// cleanup, standing in for testing.T.Chdir which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}
