// Package publish pushes finished content to external platforms.
//
// The Medium API is officially deprecated (archived March 2023) but
// self-issued access tokens and the POST endpoint still work.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const mediumAPIBase = "https://api.medium.com/v1"

const (
	maxTitleLen = 100
	maxTags     = 3
	maxTagLen   = 25
)

// Post is the result of a successful Medium publish.
type Post struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	PublishStatus string `json:"publishStatus"`
}

// PublishOptions control how a post lands on Medium.
type PublishOptions struct {
	// Status is "draft", "public", or "unlisted". Empty means draft.
	Status       string
	Tags         []string
	CanonicalURL string
}

// MediumClient wraps the Medium REST API with a bearer token.
type MediumClient struct {
	httpClient *http.Client
	baseURL    string
	userID     string
}

// NewMediumClient creates a client authenticated with a self-issued
// integration token.
func NewMediumClient(token string) *MediumClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = 30 * time.Second

	return &MediumClient{
		httpClient: client,
		baseURL:    mediumAPIBase,
	}
}

// UserID fetches the authenticated user's id, cached after the first call.
func (c *MediumClient) UserID(ctx context.Context) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return "", fmt.Errorf("fetch medium user: %w", err)
	}

	c.userID = out.Data.ID
	return c.userID, nil
}

// Publish posts a markdown article. The title is truncated to 100 runes,
// tags to 3 of at most 25 runes each, and the body is prefixed with the
// title as a level-1 heading since Medium drops the title field from the
// rendered body.
func (c *MediumClient) Publish(ctx context.Context, title, body string, opts PublishOptions) (*Post, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return nil, err
	}

	status := opts.Status
	if status == "" {
		status = "draft"
	}

	title = truncateRunes(title, maxTitleLen)
	payload := map[string]any{
		"title":         title,
		"contentFormat": "markdown",
		"content":       fmt.Sprintf("# %s\n\n%s", title, body),
		"publishStatus": status,
	}
	if len(opts.Tags) > 0 {
		tags := opts.Tags
		if len(tags) > maxTags {
			tags = tags[:maxTags]
		}
		clipped := make([]string, len(tags))
		for i, tag := range tags {
			clipped[i] = truncateRunes(tag, maxTagLen)
		}
		payload["tags"] = clipped
	}
	if opts.CanonicalURL != "" {
		payload["canonicalUrl"] = opts.CanonicalURL
	}

	var out struct {
		Data Post `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/"+userID+"/posts", payload, &out); err != nil {
		return nil, fmt.Errorf("publish to medium: %w", err)
	}
	return &out.Data, nil
}

func (c *MediumClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("medium api %s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
