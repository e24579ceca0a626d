package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Stream is a lazy, finite, non-restartable sequence of text fragments.
// The fragments concatenate to the same logical response a Generate call
// would have produced. Recv returns io.EOF when the stream is exhausted.
type Stream struct {
	inner *openai.ChatCompletionStream
}

// Recv returns the next text fragment. Mid-stream failures propagate to
// the caller; they are not retried from the last partial chunk.
func (s *Stream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

// Close releases the underlying connection.
func (s *Stream) Close() {
	s.inner.Close()
}

// GenerateStream opens a streaming completion. The retry policy applies to
// connection establishment only.
func (c *Client) GenerateStream(ctx context.Context, system string, messages []Message, opts ...Option) (*Stream, error) {
	req := c.buildRequest(system, messages, opts)
	req.Stream = true

	var inner *openai.ChatCompletionStream
	err := c.withRetry(ctx, func() error {
		var callErr error
		inner, callErr = c.api.CreateChatCompletionStream(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}

	return &Stream{inner: inner}, nil
}
