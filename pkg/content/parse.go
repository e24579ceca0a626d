package content

import "strings"

// SplitTitleBody parses a model reply: the first line is the title with
// leading '#' markers and whitespace stripped, the remainder is the body.
func SplitTitleBody(reply string) (title, body string) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return "", ""
	}

	lines := strings.Split(trimmed, "\n")
	title = strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return title, body
}

// WordCount counts whitespace-delimited tokens. An approximation, not a
// typographic word count.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
