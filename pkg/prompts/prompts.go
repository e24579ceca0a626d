// Package prompts renders the embedded system-prompt templates used by the
// content generators, the style analyzer, and the research agent.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

// BrandVoice anchors every generation prompt to the daccia.io editorial
// identity.
const BrandVoice = "You write for daccia.io, a company focused on Explainable AI for " +
	"Critical Care. The tone is authoritative yet accessible. You bridge " +
	"the gap between clinical practice and AI technology. You use concrete " +
	"examples from emergency medicine and critical care settings."

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// Render executes the named template (e.g. "article_medium.tmpl") with the
// given data.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
