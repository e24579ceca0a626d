package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "generated text"}}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46}
}`

func errorBody(msg string) string {
	return fmt.Sprintf(`{"error": {"message": %q, "type": "invalid_request_error"}}`, msg)
}

// newTestClient points the client at a fake server and removes the
// backoff waits so retry tests run instantly.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "test-model",
	}, nil)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestGenerateReturnsTextAndAccumulatesUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, Usage{TotalInputTokens: 12, TotalOutputTokens: 34}, client.Usage())

	_, err = client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "again"}})
	require.NoError(t, err)
	assert.Equal(t, Usage{TotalInputTokens: 24, TotalOutputTokens: 68}, client.Usage())
}

func TestAuthFailureIsNeverRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, errorBody("invalid api key"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestBadRequestIsNeverRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, errorBody("malformed request"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRateLimitIsRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, errorBody("rate limited"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestServerErrorSurfacesAfterThreeAttempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, errorBody("upstream exploded"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Contains(t, err.Error(), "chat completion")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthorized", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, false},
		{"forbidden", &openai.APIError{HTTPStatusCode: http.StatusForbidden}, false},
		{"rate limit", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, false},
		{"not found", &openai.APIError{HTTPStatusCode: http.StatusNotFound}, false},
		{"server error", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &openai.APIError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"request error 5xx", &openai.RequestError{HTTPStatusCode: http.StatusServiceUnavailable}, true},
		{"request error 4xx", &openai.RequestError{HTTPStatusCode: http.StatusUnprocessableEntity}, false},
		{"transport failure", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

const streamBody = `data: {"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hello"}}]}

data: {"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"}}]}

data: [DONE]

`

func TestGenerateStreamYieldsFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	stream, err := client.GenerateStream(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	var got string
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got += fragment
	}
	assert.Equal(t, "Hello world", got)
}

func TestGenerateStreamRetriesEstablishment(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, errorBody("warming up"))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamBody)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	stream, err := client.GenerateStream(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, int32(2), attempts.Load())
}
