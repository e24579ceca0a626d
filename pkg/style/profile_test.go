package style

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileHasAllDimensions(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, DefaultUserID, p.UserID)
	assert.Zero(t, p.EditCount)
	require.Len(t, p.Dimensions, len(DimensionKeys))
	for _, key := range DimensionKeys {
		dim := p.Dimensions[key]
		require.NotNil(t, dim, "missing dimension %s", key)
		assert.Zero(t, dim.Confidence)
		assert.NotEmpty(t, dim.Value)
		assert.Empty(t, dim.Examples)
	}
}

func TestReinforceCapsConfidenceAtOne(t *testing.T) {
	dim := &Dimension{Name: "Formality", Value: "balanced"}

	for i := 0; i < 20; i++ {
		dim.Reinforce("casual", "")
		assert.LessOrEqual(t, dim.Confidence, 1.0)
	}
	assert.Equal(t, 1.0, dim.Confidence)
}

func TestReinforceKeepsFiveMostRecentExamples(t *testing.T) {
	dim := &Dimension{Name: "Humor"}

	for i := 1; i <= 6; i++ {
		dim.Reinforce("dry", fmt.Sprintf("example %d", i))
	}

	require.Len(t, dim.Examples, 5)
	assert.Equal(t, "example 2", dim.Examples[0])
	assert.Equal(t, "example 6", dim.Examples[4])
	assert.Equal(t, "example 6", dim.LatestExample())
}

func TestReinforceKeepsValueWhenPreferenceEmpty(t *testing.T) {
	dim := &Dimension{Name: "Structure", Value: "mixed"}

	dim.Reinforce("", "a snippet")

	assert.Equal(t, "mixed", dim.Value)
	assert.InDelta(t, 0.15, dim.Confidence, 1e-9)
	assert.Equal(t, []string{"a snippet"}, dim.Examples)
}

func TestPromptFragmentEmptyWithoutEdits(t *testing.T) {
	p := DefaultProfile()
	assert.Empty(t, p.PromptFragment())
}

func TestPromptFragmentOmitsLowConfidenceDimensions(t *testing.T) {
	p := DefaultProfile()
	p.EditCount = 3
	p.Dimensions["formality"].Value = "casual and direct"
	p.Dimensions["formality"].Confidence = 0.45
	p.Dimensions["formality"].Examples = []string{"older", "Look, here's the thing..."}
	p.Dimensions["humor"].Confidence = 0.2 // at the threshold, must not appear
	p.Dimensions["sentence_length"].Confidence = 0.15

	fragment := p.PromptFragment()

	assert.Contains(t, fragment, "- Formality: casual and direct")
	assert.Contains(t, fragment, `Example: "Look, here's the thing..."`)
	assert.NotContains(t, fragment, "Humor")
	assert.NotContains(t, fragment, "Sentence Length")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	p := DefaultProfile()
	p.EditCount = 4
	p.LastUpdated = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p.Dimensions["formality"].Value = "casual"
	p.Dimensions["formality"].Confidence = 0.6
	p.Dimensions["formality"].Examples = []string{"one", "two"}

	require.NoError(t, p.Save(dir))

	loaded, err := Load(dir, DefaultUserID)
	require.NoError(t, err)

	assert.Equal(t, p.EditCount, loaded.EditCount)
	assert.True(t, p.LastUpdated.Equal(loaded.LastUpdated))
	for _, key := range DimensionKeys {
		assert.Equal(t, p.Dimensions[key].Value, loaded.Dimensions[key].Value, key)
		assert.Equal(t, p.Dimensions[key].Confidence, loaded.Dimensions[key].Confidence, key)
		assert.Equal(t, p.Dimensions[key].Examples, loaded.Dimensions[key].Examples, key)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	loaded, err := Load(t.TempDir(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, "nobody", loaded.UserID)
	assert.Zero(t, loaded.EditCount)
	require.Len(t, loaded.Dimensions, len(DimensionKeys))
}
