package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragchat.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
	assert.Equal(t, 60*time.Second, cfg.ChatTimeout())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragchat.yaml")
	content := `
client:
  server_url: http://chat.internal:9000
  chat_timeout_seconds: 5
  suggestions: ["Hello?"]
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://chat.internal:9000", cfg.Client.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout())
	assert.Equal(t, []string{"Hello?"}, cfg.Client.Suggestions)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.UploadTimeout())
	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddr())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "7070")
	t.Setenv("DATA_DIR", "/srv/ragchat")
	t.Setenv("RAGCHAT_SERVER_URL", "http://example:7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://llm.internal/v1")

	cfg, err := LoadConfig(filepath.Join(dir, "ragchat.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/ragchat/uploads", cfg.GetUploadDir())
	assert.Equal(t, "/srv/ragchat/index.duckdb", cfg.Storage.IndexPath)
	assert.Equal(t, "http://example:7070", cfg.Client.ServerURL)
	assert.Equal(t, "sk-test", cfg.Retrieval.OpenAIAPIKey)
	assert.Equal(t, "http://llm.internal/v1", cfg.Retrieval.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Retrieval.ChatModel)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	for _, p := range []string{cfg.GetDataDir(), cfg.GetUploadDir()} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
