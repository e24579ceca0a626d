package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/decode"
	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
)

const proposalSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"content_type": {"type": "string"},
			"angle": {"type": "string"},
			"source_articles": {"type": "array", "items": {"type": "string"}},
			"urgency": {"type": "string", "enum": ["high", "medium", "low"]}
		},
		"required": ["title", "content_type"]
	}
}`

// Proposal is one suggested content topic derived from analyzed research.
type Proposal struct {
	Title          string   `json:"title"`
	ContentType    string   `json:"content_type"`
	Angle          string   `json:"angle"`
	SourceArticles []string `json:"source_articles"`
	Urgency        string   `json:"urgency"`
}

// Proposer turns article analyses into content topic proposals.
type Proposer struct {
	backend llm.TextBackend
	logger  *zap.Logger
}

// NewProposer creates a proposer over the given model backend.
func NewProposer(backend llm.TextBackend, logger *zap.Logger) *Proposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proposer{backend: backend, logger: logger}
}

// Propose asks the model for count new topics, steering it away from
// existingTopics. An unparseable reply yields an empty list, not an error.
func (p *Proposer) Propose(ctx context.Context, analyses []*Analysis, existingTopics []string, count int) ([]Proposal, error) {
	if count <= 0 {
		count = 5
	}

	system, err := prompts.Render("research_propose.tmpl", struct {
		Count          int
		ExistingTopics []string
	}{count, existingTopics})
	if err != nil {
		return nil, err
	}

	blocks := make([]string, 0, len(analyses))
	for _, a := range analyses {
		blocks = append(blocks, fmt.Sprintf(
			"Article: %s\nRelevance: %g/10\nSummary: %s\nAngles: %s",
			a.Title, a.RelevanceScore, a.Summary, strings.Join(a.ContentAngles, ", "),
		))
	}

	reply, err := p.backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: strings.Join(blocks, "\n\n")}},
		llm.WithTemperature(0.7),
	)
	if err != nil {
		return nil, fmt.Errorf("propose topics: %w", err)
	}

	var proposals []Proposal
	if err := decode.JSON(reply, proposalSchema, &proposals); err != nil {
		if !errors.Is(err, decode.ErrUnparseable) {
			return nil, err
		}
		p.logger.Warn("proposal reply unparseable, returning none", zap.Error(err))
		return []Proposal{}, nil
	}
	return proposals, nil
}
