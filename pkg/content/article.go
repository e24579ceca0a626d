package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
	"github.com/daccia/daccia/pkg/style"
)

// articleTemplates maps the long-form content types to their prompt
// templates.
var articleTemplates = map[Type]string{
	TypeMediumArticle: "article_medium.tmpl",
	TypeBlogPost:      "article_blog.tmpl",
}

type articlePromptData struct {
	BrandVoice   string
	Topic        string
	Audience     string
	WordCount    int
	Tone         string
	KeyPoints    []string
	References   []string
	StyleContext string
}

// ArticleGenerator produces long-form articles for Medium and the
// daccia.io blog.
type ArticleGenerator struct {
	backend llm.TextBackend
	profile *style.Profile
}

// NewArticleGenerator creates an article generator. The profile may be nil
// when no style has been learned yet.
func NewArticleGenerator(backend llm.TextBackend, profile *style.Profile) *ArticleGenerator {
	return &ArticleGenerator{backend: backend, profile: profile}
}

// BuildSystemPrompt renders the type-specific template with the request
// parameters and the learned style fragment.
func (g *ArticleGenerator) BuildSystemPrompt(req Request) (string, error) {
	name, ok := articleTemplates[req.Type]
	if !ok {
		return "", fmt.Errorf("article generator does not handle content type %q", req.Type)
	}

	return prompts.Render(name, articlePromptData{
		BrandVoice:   prompts.BrandVoice,
		Topic:        req.Topic,
		Audience:     req.TargetAudience,
		WordCount:    req.TargetWordCount,
		Tone:         req.Tone,
		KeyPoints:    req.KeyPoints,
		References:   req.References,
		StyleContext: styleContext(g.profile),
	})
}

// Generate performs one model call and parses the reply into a content
// record. Failures propagate as-is; there is no retry beyond the model
// client's own policy.
func (g *ArticleGenerator) Generate(ctx context.Context, req Request) (Generated, error) {
	start := time.Now()

	system, err := g.BuildSystemPrompt(req)
	if err != nil {
		return Generated{}, err
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Write an article about: %s", req.Topic)
	if len(req.KeyPoints) > 0 {
		user.WriteString("\n\nKey points to cover:\n")
		for _, p := range req.KeyPoints {
			fmt.Fprintf(&user, "- %s\n", p)
		}
	}
	if len(req.References) > 0 {
		user.WriteString("\n\nReferences to incorporate:\n")
		for _, r := range req.References {
			fmt.Fprintf(&user, "- %s\n", r)
		}
	}

	reply, err := g.backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: user.String()}},
		llm.WithTemperature(style.SuggestTemperature(g.profile)),
	)
	if err != nil {
		return Generated{}, err
	}

	title, body := SplitTitleBody(reply)
	if title == "" {
		title = req.Topic
	}

	return Generated{
		Title: title,
		Body:  body,
		Type:  req.Type,
		Metadata: map[string]any{
			"word_count":              WordCount(body),
			"generation_time_seconds": roundSeconds(time.Since(start)),
			"token_usage":             g.backend.Usage(),
		},
	}, nil
}

func styleContext(p *style.Profile) string {
	if p == nil {
		return ""
	}
	return p.PromptFragment()
}

// roundSeconds reports elapsed wall-clock time rounded to centiseconds.
func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}
