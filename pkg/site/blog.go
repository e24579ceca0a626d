// Package site rewrites the blog section of the static daccia.io homepage.
package site

import (
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	startMarker = "<!-- BLOG_START -->"
	endMarker   = "<!-- BLOG_END -->"
)

var markerRegion = regexp.MustCompile(`(?s)<!-- BLOG_START -->.*?<!-- BLOG_END -->`)

// Card is one published article shown on the homepage.
type Card struct {
	Title     string
	MediumURL string
	Teaser    string
}

var sectionTemplate = template.Must(template.New("blog_section").Parse(startMarker + `
<section class="blog" id="blog">
  <h2>From the Blog</h2>
  <div class="blog-cards">
{{- range .}}
    <a class="blog-card" href="{{.MediumURL}}" target="_blank" rel="noopener">
      <h3>{{.Title}}</h3>
      <p>{{.Teaser}}</p>
    </a>
{{- end}}
{{- if not .}}
    <p class="blog-empty">New articles are on the way.</p>
{{- end}}
  </div>
</section>
` + endMarker))

// Regenerate replaces the marker-delimited blog region of indexPath with
// cards for the given articles. A missing file or missing markers is a
// warning, not an error, and the file is left byte-for-byte untouched.
func Regenerate(indexPath string, cards []Card, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		logger.Warn("index.html not found, skipping blog update", zap.String("path", indexPath))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", indexPath, err)
	}

	html := string(raw)
	if !markerRegion.MatchString(html) {
		logger.Warn("blog markers not found, skipping blog update", zap.String("path", indexPath))
		return nil
	}

	var section strings.Builder
	if err := sectionTemplate.Execute(&section, cards); err != nil {
		return fmt.Errorf("render blog section: %w", err)
	}

	updated := markerRegion.ReplaceAllLiteralString(html, section.String())
	if err := os.WriteFile(indexPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", indexPath, err)
	}

	logger.Info("blog section updated", zap.String("path", indexPath), zap.Int("articles", len(cards)))
	return nil
}
