package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// IsRetryable classifies a model-call failure.
//
// Authentication failures are never retried: a bad credential cannot
// succeed on a second attempt. Rate limits are retried. Any other 4xx
// means the request itself is malformed, so retrying only wastes quota.
// Everything else (5xx, timeouts, transport failures) is transient.
func IsRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	// Transport-level failure with no HTTP status: treat as transient.
	return true
}

func retryableStatus(status int) bool {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return false
	case status == http.StatusTooManyRequests:
		return true
	case status >= 400 && status < 500:
		return false
	default:
		return true
	}
}
