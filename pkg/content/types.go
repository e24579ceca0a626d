// Package content generates articles and conversational stream posts and
// manages iterative refinement sessions.
package content

import "context"

// Type tags a piece of content. The set is closed: two long-form article
// families plus the three conversational streams.
type Type string

const (
	TypeMediumArticle       Type = "medium_article"
	TypeBlogPost            Type = "blog_post"
	TypePatientConversation Type = "patient_conversation"
	TypeAskANurse           Type = "ask_a_nurse"
	TypeAskAnEDDoctor       Type = "ask_an_ed_doctor"
)

// Valid reports whether t is one of the known content types.
func (t Type) Valid() bool {
	switch t {
	case TypeMediumArticle, TypeBlogPost, TypePatientConversation, TypeAskANurse, TypeAskAnEDDoctor:
		return true
	}
	return false
}

// Request holds the parameters for one generation. Construct with
// NewRequest for the documented defaults; a request is consumed once and
// never mutated by generators.
type Request struct {
	Topic           string
	Type            Type
	TargetAudience  string
	TargetWordCount int
	KeyPoints       []string
	Tone            string
	References      []string
}

// NewRequest creates a request with the default audience and word count.
func NewRequest(topic string, contentType Type) Request {
	return Request{
		Topic:           topic,
		Type:            contentType,
		TargetAudience:  "general",
		TargetWordCount: 1500,
	}
}

// Generated is the output of one generation.
type Generated struct {
	Title          string
	Body           string
	Type           Type
	Metadata       map[string]any
	ConversationID string
}

// Generator is the capability shared by all content generators. Each
// implementation handles a family of content types, selecting prompt
// templates and metadata shape by type tag.
type Generator interface {
	BuildSystemPrompt(req Request) (string, error)
	Generate(ctx context.Context, req Request) (Generated, error)
}
