package style

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/decode"
	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
)

// analysisSchema validates the analyzer's structured reply: a map keyed by
// dimension identifier, each entry carrying a preference and optionally an
// example snippet.
const analysisSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"preference": {"type": "string"},
			"example": {"type": "string"}
		}
	}
}`

type finding struct {
	Preference string `json:"preference"`
	Example    string `json:"example"`
}

// Analyzer compares an original draft against the author's edited version
// and updates the style profile from what the diff reveals.
//
// Flow: the user generates content, edits it externally (Medium, Google
// Docs), and pastes the edited version back. One model call characterizes
// the changes per dimension; the profile absorbs the result.
type Analyzer struct {
	backend llm.TextBackend
	logger  *zap.Logger
}

// NewAnalyzer creates a style analyzer.
func NewAnalyzer(backend llm.TextBackend, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{backend: backend, logger: logger}
}

type dimensionInfo struct {
	Key, Name, Description string
}

// AnalyzeEdit asks the model to characterize the preference shown by each
// style dimension in the diff and applies the result to the profile.
//
// Parsing is best-effort and never fatal: an unparseable reply leaves the
// profile unmodified and does not count as a learning event. A parseable
// reply updates every matched dimension, then increments EditCount exactly
// once — the whole batch is one learning event.
func (a *Analyzer) AnalyzeEdit(ctx context.Context, original, edited string, profile *Profile) (*Profile, error) {
	dims := make([]dimensionInfo, 0, len(DimensionKeys))
	for _, key := range DimensionKeys {
		if d := profile.Dimensions[key]; d != nil {
			dims = append(dims, dimensionInfo{Key: key, Name: d.Name, Description: d.Description})
		}
	}

	system, err := prompts.Render("style_analysis.tmpl", struct{ Dimensions []dimensionInfo }{dims})
	if err != nil {
		return profile, err
	}

	userMessage := fmt.Sprintf(
		"ORIGINAL CONTENT:\n%s\n\nEDITED CONTENT:\n%s\n\n"+
			"Analyze the edits. For each style dimension, describe the preference "+
			"shown by the edits. Respond in JSON format with dimension identifiers as keys.",
		original, edited,
	)

	reply, err := a.backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: userMessage}},
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return profile, fmt.Errorf("style analysis: %w", err)
	}

	findings := map[string]finding{}
	if err := decode.JSON(reply, analysisSchema, &findings); err != nil {
		// The profile improves over time with more edits; a reply we
		// cannot parse is skipped rather than allowed to corrupt state.
		a.logger.Warn("style analysis reply not parseable, skipping update", zap.Error(err))
		return profile, nil
	}

	for key, f := range findings {
		dim, ok := profile.Dimensions[key]
		if !ok {
			continue
		}
		dim.Reinforce(f.Preference, f.Example)
	}

	profile.EditCount++
	profile.LastUpdated = time.Now()
	return profile, nil
}
