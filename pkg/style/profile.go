// Package style tracks a user's learned writing preferences across a fixed
// set of dimensions and turns them into prompt fragments for generation.
package style

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// confidenceStep is added per usable learning signal, capped at 1.0.
	confidenceStep = 0.15
	// maxExamples bounds the per-dimension example history, most recent last.
	maxExamples = 5
	// fragmentThreshold gates which dimensions reach generation prompts.
	fragmentThreshold = 0.2

	// DefaultUserID is used when no user is specified.
	DefaultUserID = "default"
)

// Dimension is one axis of writing style with a learned value.
type Dimension struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Value       string   `yaml:"value"`
	Confidence  float64  `yaml:"confidence"`
	Examples    []string `yaml:"examples,omitempty"`
}

// Reinforce records one learning signal for this dimension: a non-empty
// value overwrites the current characterization, confidence rises by the
// fixed step (saturating at 1.0), and a non-empty example is appended with
// the oldest dropped beyond the cap.
func (d *Dimension) Reinforce(value, example string) {
	if value != "" {
		d.Value = value
	}
	d.Confidence += confidenceStep
	if d.Confidence > 1.0 {
		d.Confidence = 1.0
	}
	if example != "" {
		d.Examples = append(d.Examples, example)
		if len(d.Examples) > maxExamples {
			d.Examples = d.Examples[len(d.Examples)-maxExamples:]
		}
	}
}

// LatestExample returns the most recent example, or "" if none exist.
func (d *Dimension) LatestExample() string {
	if len(d.Examples) == 0 {
		return ""
	}
	return d.Examples[len(d.Examples)-1]
}

// Profile is one user's complete learned style.
type Profile struct {
	UserID      string                `yaml:"user_id"`
	Dimensions  map[string]*Dimension `yaml:"dimensions"`
	EditCount   int                   `yaml:"edit_count"`
	LastUpdated time.Time             `yaml:"last_updated"`
}

// DimensionKeys is the fixed, closed set of dimension identifiers in
// display order. The set never grows or shrinks after profile creation.
var DimensionKeys = []string{
	"sentence_length",
	"formality",
	"jargon_level",
	"structure",
	"opening_style",
	"closing_style",
	"humor",
	"personal_anecdotes",
}

// DefaultProfile creates a profile with all dimensions present, neutral
// values, and zero confidence. Deterministic: no randomness, no clock reads.
func DefaultProfile() *Profile {
	return &Profile{
		UserID: DefaultUserID,
		Dimensions: map[string]*Dimension{
			"sentence_length": {
				Name:        "Sentence Length",
				Description: "Preference for short, punchy vs. long, flowing sentences",
				Value:       "balanced",
			},
			"formality": {
				Name:        "Formality",
				Description: "Formal/academic vs. conversational tone",
				Value:       "professional but accessible",
			},
			"jargon_level": {
				Name:        "Technical Jargon",
				Description: "Heavy use of medical/AI terminology vs. plain language",
				Value:       "moderate -- explains terms when first used",
			},
			"structure": {
				Name:        "Structure Preference",
				Description: "Headers and lists vs. flowing prose",
				Value:       "mixed",
			},
			"opening_style": {
				Name:        "Opening Style",
				Description: "How articles begin: anecdote, question, statistic, statement",
				Value:       "not yet determined",
			},
			"closing_style": {
				Name:        "Closing Style",
				Description: "How articles end: call to action, summary, question, reflection",
				Value:       "not yet determined",
			},
			"humor": {
				Name:        "Humor Usage",
				Description: "Frequency and type of humor",
				Value:       "not yet determined",
			},
			"personal_anecdotes": {
				Name:        "Personal Anecdotes",
				Description: "Use of personal stories and experiences",
				Value:       "not yet determined",
			},
		},
	}
}

// PromptFragment converts the profile into a block for generation prompts.
// A profile with no learned edits yields an empty string so default noise
// never pollutes the prompt, and dimensions at or below the confidence
// threshold are omitted entirely.
func (p *Profile) PromptFragment() string {
	if p.EditCount == 0 {
		return ""
	}

	lines := []string{"AUTHOR STYLE PREFERENCES (learned from previous edits):"}
	for _, key := range DimensionKeys {
		dim := p.Dimensions[key]
		if dim == nil || dim.Confidence <= fragmentThreshold {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", dim.Name, dim.Value))
		if example := dim.LatestExample(); example != "" {
			lines = append(lines, fmt.Sprintf("  Example: %q", example))
		}
	}
	return strings.Join(lines, "\n")
}

func profilePath(dir, userID string) string {
	return filepath.Join(dir, fmt.Sprintf("style_%s.yaml", userID))
}

// Save persists the profile as one YAML file per user id. The file is
// human-readable and safe to hand-edit. Last writer wins; there is no
// cross-process locking.
func (p *Profile) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal style profile: %w", err)
	}
	if err := os.WriteFile(profilePath(dir, p.UserID), data, 0o644); err != nil {
		return fmt.Errorf("write style profile: %w", err)
	}
	return nil
}

// Load reads the profile for userID from dir. A missing file is not an
// error: absence of history means no learning has happened yet, so the
// default profile is returned.
func Load(dir, userID string) (*Profile, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	data, err := os.ReadFile(profilePath(dir, userID))
	if errors.Is(err, fs.ErrNotExist) {
		p := DefaultProfile()
		p.UserID = userID
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read style profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse style profile: %w", err)
	}
	return &p, nil
}
