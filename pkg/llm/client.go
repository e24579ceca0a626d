// Package llm wraps the remote chat-completion API with retry logic,
// token-usage accounting, and a multi-turn conversation log.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Chat roles, re-exported so callers don't import the SDK directly.
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is a single turn in a chat exchange.
type Message struct {
	Role    string
	Content string
}

// Usage is the cumulative token count for a client instance.
// Counters only grow; they are never reset.
type Usage struct {
	TotalInputTokens  int `json:"total_input_tokens"`
	TotalOutputTokens int `json:"total_output_tokens"`
}

// TextBackend is the minimal generation surface consumed by conversations,
// content generators, and analyzers.
type TextBackend interface {
	Generate(ctx context.Context, system string, messages []Message, opts ...Option) (string, error)
	Usage() Usage
}

// Config configures the chat-completion client.
type Config struct {
	APIKey      string
	BaseURL     string // optional, defaults to the SDK's endpoint
	Model       string
	MaxTokens   int     // default 4096
	Temperature float32 // default 0.7
	MaxAttempts int     // total attempts including the first, default 3
}

// Client calls the chat-completion API with bounded retry.
// Not safe for concurrent use; the CLI is strictly sequential.
type Client struct {
	api         completionAPI
	model       string
	maxTokens   int
	temperature float32
	maxAttempts int
	newBackOff  func() backoff.BackOff
	logger      *zap.Logger

	totalInput  int
	totalOutput int
}

// completionAPI is the slice of the SDK the client uses.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// NewClient creates a chat-completion client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		newBackOff:  defaultBackOff,
		logger:      logger,
	}
}

// defaultBackOff is the wait schedule between retry attempts: exponential
// starting at 2s, doubling, capped at 30s, with the library's default jitter.
func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}

// Option adjusts a single generation call.
type Option func(*callOptions)

type callOptions struct {
	maxTokens   int
	temperature *float32
}

// WithMaxTokens overrides the configured max token budget for one call.
func WithMaxTokens(n int) Option {
	return func(o *callOptions) { o.maxTokens = n }
}

// WithTemperature overrides the configured temperature for one call.
func WithTemperature(t float32) Option {
	return func(o *callOptions) { o.temperature = &t }
}

func (c *Client) buildRequest(system string, messages []Message, opts []Option) openai.ChatCompletionRequest {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	maxTokens := c.maxTokens
	if co.maxTokens > 0 {
		maxTokens = co.maxTokens
	}
	temperature := c.temperature
	if co.temperature != nil {
		temperature = *co.temperature
	}

	chat := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chat = append(chat, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range messages {
		chat = append(chat, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chat,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Generate sends the system prompt plus message history and returns the
// assistant's text reply. Token usage from the response is added to the
// client's cumulative counters.
func (c *Client) Generate(ctx context.Context, system string, messages []Message, opts ...Option) (string, error) {
	req := c.buildRequest(system, messages, opts)

	var resp openai.ChatCompletionResponse
	err := c.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices in response")
	}

	c.totalInput += resp.Usage.PromptTokens
	c.totalOutput += resp.Usage.CompletionTokens

	return resp.Choices[0].Message.Content, nil
}

// Usage returns the cumulative token counts for this client instance.
func (c *Client) Usage() Usage {
	return Usage{
		TotalInputTokens:  c.totalInput,
		TotalOutputTokens: c.totalOutput,
	}
}

// withRetry runs op up to maxAttempts times. Non-retryable failures and
// context cancellation surface immediately; after the final attempt the last
// error is returned, never swallowed.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	bo := c.newBackOff()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == c.maxAttempts {
			break
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		c.logger.Debug("retrying model call",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(lastErr))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
