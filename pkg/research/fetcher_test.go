package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Critical Care AI Weekly</title>
    <link>https://example.org</link>
    <item>
      <title>AI Triage Study</title>
      <link>https://example.org/triage</link>
      <description><![CDATA[<p>A <b>large</b> study of AI triage in the ED.</p>]]></description>
      <pubDate>Mon, 18 Aug 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Sepsis Model Recall</title>
      <link>https://example.org/sepsis</link>
      <description>A deployed sepsis model was withdrawn.</description>
    </item>
    <item>
      <title>Third Entry</title>
      <link>https://example.org/third</link>
      <description>Extra.</description>
    </item>
  </channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "daccia.io research agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	articles, err := f.FetchFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "AI Triage Study", first.Title)
	assert.Equal(t, "https://example.org/triage", first.URL)
	assert.Equal(t, "Critical Care AI Weekly", first.Source)
	assert.Equal(t, "A large study of AI triage in the ED.", first.Summary)
	require.NotNil(t, first.Published)
	assert.Len(t, first.ContentHash, 64)
	assert.Len(t, first.ID(), 12)
	assert.Nil(t, articles[1].Published)
}

func TestFetchFeedHashIsStable(t *testing.T) {
	a := &Article{URL: "https://example.org/x", Title: "T", ContentHash: contentHash("https://example.org/x", "T")}
	b := contentHash("https://example.org/x", "T")
	assert.Equal(t, a.ContentHash, b)
	assert.NotEqual(t, b, contentHash("https://example.org/y", "T"))
}

func TestFetchFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	_, err := f.FetchFeed(context.Background(), srv.URL, 10)
	require.Error(t, err)
}

func TestFetchFullTextExtractsArticleBlock(t *testing.T) {
	page := `<html><head><script>var x = 1;</script></head><body>
	<nav>Home | About</nav>
	<article>
	  <h1>AI Triage Study</h1>
	  <p>Triage models reduced wait times.</p>
	  <p>Nurses remained in the loop.</p>
	</article>
	<footer>Copyright</footer>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	a := &Article{URL: srv.URL, Title: "AI Triage Study"}
	NewFetcher(nil).FetchFullText(context.Background(), a)

	assert.Contains(t, a.FullText, "Triage models reduced wait times.")
	assert.Contains(t, a.FullText, "Nurses remained in the loop.")
	assert.NotContains(t, a.FullText, "var x")
	assert.NotContains(t, a.FullText, "Home | About")
	assert.NotContains(t, a.FullText, "Copyright")
}

func TestFetchFullTextFallsBackToClassSelectors(t *testing.T) {
	page := `<html><body><div class="post-content"><p>Class-selected body.</p></div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	a := &Article{URL: srv.URL}
	NewFetcher(nil).FetchFullText(context.Background(), a)
	assert.Equal(t, "Class-selected body.", a.FullText)
}

func TestFetchFullTextTruncates(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><article><p>%s</p></article></body></html>", long)
	}))
	defer srv.Close()

	a := &Article{URL: srv.URL}
	NewFetcher(nil).FetchFullText(context.Background(), a)
	assert.Len(t, []rune(a.FullText), fullTextLimit)
}

func TestFetchFullTextToleratesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := &Article{URL: srv.URL}
	NewFetcher(nil).FetchFullText(context.Background(), a)
	assert.Empty(t, a.FullText)

	b := &Article{URL: "http://127.0.0.1:1/nope"}
	NewFetcher(nil).FetchFullText(context.Background(), b)
	assert.Empty(t, b.FullText)
}
