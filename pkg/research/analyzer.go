package research

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/decode"
	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
)

// FocusAreas are the editorial beats daccia.io covers. Relevance scores
// are always judged against this list.
var FocusAreas = []string{
	"Explainable AI (XAI) in healthcare",
	"AI in emergency medicine and critical care",
	"Clinical decision support systems",
	"Patient safety and AI",
	"AI regulation in healthcare",
	"Machine learning in ICU/ED settings",
	"Nurse and clinician perspectives on AI",
	"AI ethics in medicine",
}

const analysisInputLimit = 3000

const analysisSchema = `{
	"type": "object",
	"properties": {
		"relevance_score": {"type": "number", "minimum": 0, "maximum": 10},
		"relevant_focus_areas": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"},
		"content_angles": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["relevance_score", "summary"]
}`

// Analysis is the model's relevance assessment of one article.
type Analysis struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	RelevanceScore float64  `json:"relevance_score"`
	FocusAreas     []string `json:"relevant_focus_areas"`
	Summary        string   `json:"summary"`
	ContentAngles  []string `json:"content_angles"`
}

// Analyzer scores articles against the daccia.io focus areas.
type Analyzer struct {
	backend llm.TextBackend
	logger  *zap.Logger
}

// NewAnalyzer creates an analyzer over the given model backend.
func NewAnalyzer(backend llm.TextBackend, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{backend: backend, logger: logger}
}

// Analyze asks the model to assess one article. A reply that cannot be
// decoded yields a zero-relevance analysis carrying the raw reply prefix
// as the summary; model misbehavior never aborts a research run.
func (a *Analyzer) Analyze(ctx context.Context, article *Article) (*Analysis, error) {
	system, err := prompts.Render("research_analyze.tmpl", struct{ FocusAreas []string }{FocusAreas})
	if err != nil {
		return nil, err
	}

	text := article.FullText
	if text == "" {
		text = article.Summary
	}

	reply, err := a.backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(
			"Title: %s\nSource: %s\nContent:\n%s",
			article.Title, article.Source, truncate(text, analysisInputLimit),
		)}},
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", article.ID(), err)
	}

	var analysis Analysis
	if err := decode.JSON(reply, analysisSchema, &analysis); err != nil {
		if !errors.Is(err, decode.ErrUnparseable) {
			return nil, err
		}
		a.logger.Warn("analysis reply unparseable, scoring zero",
			zap.String("article", article.ID()), zap.Error(err))
		analysis = Analysis{Summary: truncate(reply, 200)}
	}

	analysis.Title = article.Title
	analysis.URL = article.URL
	return &analysis, nil
}
