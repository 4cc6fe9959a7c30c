package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("TOOLBOX_URL", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.DefaultLLM)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM().Model)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.Toolbox.ServerURL)
	assert.Equal(t, DefaultInstruction, cfg.Agent.Instruction)
	assert.Equal(t, DefaultScript, cfg.Script)
	assert.Equal(t, ":8484", cfg.Gateway.Addr)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolateConfig(t)

	path := filepath.Join(dir, "perch", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
script = ["only one query"]

[toolbox]
server_url = "http://toolbox.internal:5000"
toolset = "my-toolset"

[agent]
instruction = "Answer tersely."
`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://toolbox.internal:5000", cfg.Toolbox.ServerURL)
	assert.Equal(t, "my-toolset", cfg.Toolbox.Toolset)
	assert.Equal(t, "Answer tersely.", cfg.Agent.Instruction)
	assert.Equal(t, []string{"only one query"}, cfg.Script)

	// Untouched values keep their defaults.
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM().Model)
}

func TestEnvFillsCredentialsAndEndpoint(t *testing.T) {
	isolateConfig(t)
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("TOOLBOX_URL", "http://127.0.0.1:7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM().APIKey)
	assert.Equal(t, "http://127.0.0.1:7000", cfg.Toolbox.ServerURL)
}

func TestFileAPIKeyWinsOverEnv(t *testing.T) {
	dir := isolateConfig(t)
	t.Setenv("GOOGLE_API_KEY", "env-key")

	path := filepath.Join(dir, "perch", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
[llm.gemini]
model = "gemini-2.5-flash"
api_key = "file-key"
`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.LLM().APIKey)
}
