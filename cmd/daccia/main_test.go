package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccia/daccia/pkg/content"
)

func TestDraftPath(t *testing.T) {
	now := time.Date(2026, 8, 24, 15, 4, 5, 0, time.UTC)

	path := draftPath("data/drafts", "AI at the Bedside: Alarms!", now)
	assert.Equal(t, "data/drafts/20260824_150405_ai_at_the_bedside__alarms_.md", path)

	long := draftPath("d", strings.Repeat("verylongtitle", 10), now)
	base := filepath.Base(long)
	// timestamp + underscore + 40-char slug + extension
	assert.Len(t, base, len("20260824_150405_")+40+len(".md"))
}

func TestReadTopicsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.txt")
	require.NoError(t, os.WriteFile(path, []byte(`
# healthcare batch
"alarm fatigue in the ICU"

sepsis model drift
  'nurse workflows'
`), 0o644))

	topics, err := readTopicsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alarm fatigue in the ICU",
		"sepsis model drift",
		"nurse workflows",
	}, topics)
}

func TestReadTopicsFileMissing(t *testing.T) {
	_, err := readTopicsFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestArticleType(t *testing.T) {
	ct, err := articleType("medium")
	require.NoError(t, err)
	assert.Equal(t, content.TypeMediumArticle, ct)

	ct, err = articleType("blog")
	require.NoError(t, err)
	assert.Equal(t, content.TypeBlogPost, ct)

	_, err = articleType("podcast")
	require.Error(t, err)
}

func TestMetadataJSON(t *testing.T) {
	assert.Equal(t, `{"word_count":42}`, metadataJSON(map[string]any{"word_count": 42}))
	assert.Equal(t, "{}", metadataJSON(nil))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "lon", clip("longer", 3))
}
