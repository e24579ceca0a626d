// Package research pulls articles from RSS/Atom feeds, scores their
// relevance to the daccia.io focus areas, and proposes new content topics.
package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	userAgent      = "daccia.io research agent/0.1"
	summaryLimit   = 500
	fullTextLimit  = 5000
	requestTimeout = 30 * time.Second
)

// Article is one fetched feed entry, optionally enriched with the full
// text extracted from its link.
type Article struct {
	URL         string
	Title       string
	Source      string
	Published   *time.Time
	Summary     string
	FullText    string
	ContentHash string
}

// ID is a short stable identifier derived from the content hash.
func (a *Article) ID() string {
	if len(a.ContentHash) < 12 {
		return a.ContentHash
	}
	return a.ContentHash[:12]
}

func contentHash(url, title string) string {
	sum := sha256.Sum256([]byte(url + title))
	return hex.EncodeToString(sum[:])
}

// Fetcher retrieves articles from feeds and web pages.
type Fetcher struct {
	parser *gofeed.Parser
	client *http.Client
	logger *zap.Logger
}

// NewFetcher creates a feed fetcher.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &Fetcher{
		parser: parser,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// FetchFeed parses an RSS/Atom feed and returns up to maxArticles entries.
// Entry summaries are stripped of HTML and truncated.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string, maxArticles int) ([]*Article, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	source := feed.Title
	if source == "" {
		source = feedURL
	}

	items := feed.Items
	if maxArticles > 0 && len(items) > maxArticles {
		items = items[:maxArticles]
	}

	articles := make([]*Article, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		articles = append(articles, &Article{
			URL:         item.Link,
			Title:       title,
			Source:      source,
			Published:   item.PublishedParsed,
			Summary:     truncate(stripHTML(item.Description), summaryLimit),
			ContentHash: contentHash(item.Link, title),
		})
	}
	return articles, nil
}

// contentSelectors are tried in order against the fetched page; the first
// matching block wins.
var contentSelectors = []string{
	"article",
	"main",
	".post-content",
	".entry-content",
	".article-body",
}

// FetchFullText fetches the article's link and extracts the main content
// block heuristically. Best-effort: failures are logged and skipped, and
// absence of extractable text is not an error.
func (f *Fetcher) FetchFullText(ctx context.Context, article *Article) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, article.URL, nil)
	if err != nil {
		f.logger.Debug("full text request build failed", zap.String("url", article.URL), zap.Error(err))
		return
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("full text fetch failed", zap.String("url", article.URL), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("full text fetch non-200", zap.String("url", article.URL), zap.Int("status", resp.StatusCode))
		return
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.logger.Debug("full text parse failed", zap.String("url", article.URL), zap.Error(err))
		return
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	for _, sel := range contentSelectors {
		block := doc.Find(sel).First()
		if block.Length() == 0 {
			continue
		}
		if text := normalizeText(block.Text()); text != "" {
			article.FullText = truncate(text, fullTextLimit)
			return
		}
	}
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// normalizeText collapses the whitespace runs left behind by HTML layout.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
