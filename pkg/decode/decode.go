// Package decode turns loosely-structured model replies into typed values.
//
// Every model response is untrusted text. JSON is the single decode step:
// it either yields a schema-validated structure or an error wrapping
// ErrUnparseable. Callers branch on the sentinel and fall back to a safe
// default; a malformed reply is never fatal.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrUnparseable marks a model reply that does not match the expected
// structure. Check with errors.Is.
var ErrUnparseable = errors.New("unparseable model reply")

// JSON validates raw against the given JSON Schema document and unmarshals
// it into v. Markdown code fences around the payload are tolerated since
// models frequently wrap JSON in them.
func JSON(raw, schema string, v any) error {
	payload := stripFences(raw)
	if payload == "" {
		return fmt.Errorf("%w: empty reply", ErrUnparseable)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: %s", ErrUnparseable, describe(result))
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, including an
// optional language tag on the opening line.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line ("```" or "```json").
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	return s
}

func describe(result *gojsonschema.Result) string {
	parts := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
