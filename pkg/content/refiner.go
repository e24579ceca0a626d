package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daccia/daccia/pkg/llm"
)

// ErrRefinementNotStarted is returned when Refine is called before
// StartRefinement. This is a caller bug, reported rather than ignored.
var ErrRefinementNotStarted = errors.New("refinement session not started: call StartRefinement first")

const refinerSystemPrompt = "You are a content editor for daccia.io, specializing in AI for healthcare content. " +
	"You are refining an article based on the author's feedback. " +
	"When given feedback:\n" +
	"1. If the feedback is vague, ask ONE clarifying question (Socratic method)\n" +
	"2. Then produce a complete revised version incorporating the feedback\n" +
	"3. Briefly explain what you changed and why\n" +
	"Preserve the original voice and style. Do not add fluff. Be precise."

// Refiner manages iterative refinement of generated content across a
// multi-turn conversation. It has two states: uninitialized until
// StartRefinement succeeds, then active for the rest of its life — the
// session simply ends when the caller stops invoking it.
type Refiner struct {
	backend      llm.TextBackend
	conversation *llm.Conversation
	sessionID    string
}

// NewRefiner creates an uninitialized refiner.
func NewRefiner(backend llm.TextBackend) *Refiner {
	return &Refiner{backend: backend}
}

// StartRefinement loads the content into a fresh conversation and returns
// the model's acknowledgment.
func (r *Refiner) StartRefinement(ctx context.Context, c Generated) (string, error) {
	conv := llm.NewConversation(r.backend, refinerSystemPrompt)

	ack, err := conv.Send(ctx, fmt.Sprintf("Here is the article to refine:\n\n# %s\n\n%s", c.Title, c.Body))
	if err != nil {
		return "", fmt.Errorf("start refinement: %w", err)
	}

	r.conversation = conv
	r.sessionID = uuid.NewString()
	return ack, nil
}

// Refine applies user feedback and returns the revised content. With
// socratic disabled, the feedback is wrapped in an instruction to skip
// clarifying questions.
func (r *Refiner) Refine(ctx context.Context, feedback string, socratic bool) (string, error) {
	if r.conversation == nil {
		return "", ErrRefinementNotStarted
	}

	if !socratic {
		feedback = "Apply this feedback directly without asking questions. " +
			"Produce the complete revised article.\n\nFeedback: " + feedback
	}

	return r.conversation.Send(ctx, feedback)
}

// RevisionCount is the number of feedback rounds applied. The initial
// content-loading turn does not count as a revision.
func (r *Refiner) RevisionCount() int {
	if r.conversation == nil {
		return 0
	}
	if n := r.conversation.TurnCount() - 1; n > 0 {
		return n
	}
	return 0
}

// SessionID identifies the active refinement session, empty until started.
func (r *Refiner) SessionID() string {
	return r.sessionID
}
