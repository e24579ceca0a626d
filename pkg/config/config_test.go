package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", s.Model)
	assert.Equal(t, "https://api.anthropic.com/v1", s.BaseURL)
	assert.Equal(t, 4096, s.MaxTokens)
	assert.InDelta(t, 0.7, s.Temperature, 0.001)
	assert.Equal(t, "draft", s.MediumPublishStatus)
	assert.Len(t, s.ResearchFeeds, 2)
	assert.Equal(t, 10, s.ResearchMaxArticles)
	assert.Equal(t, filepath.Join(".", "index.html"), s.IndexPath())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".daccia.yaml"), []byte(`
model: claude-haiku-4
max_tokens: 1024
site_root: /srv/www
research_feeds:
  - https://example.org/feed
`), 0o644))
	chdir(t, dir)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4", s.Model)
	assert.Equal(t, 1024, s.MaxTokens)
	assert.Equal(t, "/srv/www", s.SiteRoot)
	assert.Equal(t, []string{"https://example.org/feed"}, s.ResearchFeeds)
	// Unset keys still fall back to defaults.
	assert.Equal(t, "draft", s.MediumPublishStatus)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("MEDIUM_TOKEN", "medium-test")
	t.Setenv("DACCIA_MODEL", "claude-opus-4")
	t.Setenv("DACCIA_LOG_LEVEL", "debug")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", s.APIKey)
	assert.Equal(t, "medium-test", s.MediumToken)
	assert.Equal(t, "claude-opus-4", s.Model)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".daccia.yaml"), []byte("model: [unclosed"), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
