package style

import "strings"

// Generation temperatures keyed off the learned formality dimension.
// Structured, formal writing wants lower variance; loose, conversational
// writing tolerates more.
const (
	formalTemperature  float32 = 0.5
	casualTemperature  float32 = 0.8
	neutralTemperature float32 = 0.7
)

// SuggestTemperature maps a profile to a generation temperature. Only the
// formality dimension is consulted, and only once its confidence exceeds
// 0.3; below that the neutral default applies. Matching is case-insensitive
// substring, first rule wins.
func SuggestTemperature(p *Profile) float32 {
	if p == nil {
		return neutralTemperature
	}
	formality := p.Dimensions["formality"]
	if formality == nil || formality.Confidence <= 0.3 {
		return neutralTemperature
	}

	value := strings.ToLower(formality.Value)
	switch {
	case strings.Contains(value, "formal") || strings.Contains(value, "academic"):
		return formalTemperature
	case strings.Contains(value, "casual") || strings.Contains(value, "conversational"):
		return casualTemperature
	}
	return neutralTemperature
}
