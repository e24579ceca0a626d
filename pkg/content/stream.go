package content

import (
	"context"
	"fmt"
	"time"

	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
	"github.com/daccia/daccia/pkg/style"
)

// personaDescriptions defines the voice for each of the three
// conversational streams.
var personaDescriptions = map[Type]string{
	TypePatientConversation: "You are crafting a relatable conversation between a patient and an AI " +
		"system in a critical care setting. Show how explainable AI helps patients " +
		"understand their care. Use accessible, non-technical language.",
	TypeAskANurse: "You are a seasoned ICU nurse who has embraced AI tools. You explain how " +
		"AI assists in monitoring, early warning systems, and patient safety. " +
		"Your tone is warm, practical, and grounded in daily clinical reality.",
	TypeAskAnEDDoctor: "You are an emergency physician who uses AI for triage, diagnostics, and " +
		"decision support. You speak with authority but acknowledge uncertainty. " +
		"You value speed and clarity. You reference evidence-based medicine.",
}

var streamTemplates = map[Type]string{
	TypePatientConversation: "stream_patient.tmpl",
	TypeAskANurse:           "stream_nurse.tmpl",
	TypeAskAnEDDoctor:       "stream_doctor.tmpl",
}

type streamPromptData struct {
	BrandVoice   string
	Persona      string
	Topic        string
	Audience     string
	WordCount    int
	StyleContext string
}

// StreamGenerator produces conversational content for the three streams:
// patient conversations, Ask a Nurse, and Ask an ED Doctor.
type StreamGenerator struct {
	backend llm.TextBackend
	profile *style.Profile
}

// NewStreamGenerator creates a stream generator. The profile may be nil.
func NewStreamGenerator(backend llm.TextBackend, profile *style.Profile) *StreamGenerator {
	return &StreamGenerator{backend: backend, profile: profile}
}

// BuildSystemPrompt renders the persona template for the requested stream.
func (g *StreamGenerator) BuildSystemPrompt(req Request) (string, error) {
	name, ok := streamTemplates[req.Type]
	if !ok {
		return "", fmt.Errorf("stream generator does not handle content type %q", req.Type)
	}

	return prompts.Render(name, streamPromptData{
		BrandVoice:   prompts.BrandVoice,
		Persona:      personaDescriptions[req.Type],
		Topic:        req.Topic,
		Audience:     req.TargetAudience,
		WordCount:    req.TargetWordCount,
		StyleContext: styleContext(g.profile),
	})
}

// Generate performs one model call and parses the reply. Stream metadata
// carries the stream tag instead of token usage.
func (g *StreamGenerator) Generate(ctx context.Context, req Request) (Generated, error) {
	start := time.Now()

	system, err := g.BuildSystemPrompt(req)
	if err != nil {
		return Generated{}, err
	}

	reply, err := g.backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf("Topic: %s", req.Topic)}},
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
			"stream":                  string(req.Type),
		},
	}, nil
}
