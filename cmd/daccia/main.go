// daccia is the content assistant behind daccia.io. It generates articles
// and content-stream posts with an LLM, learns the author's style from
// their edits, researches new topics from RSS feeds, and publishes
// finished drafts to Medium and the daccia.io blog.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/daccia/daccia/pkg/config"
	"github.com/daccia/daccia/pkg/content"
	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/storage"
	"github.com/daccia/daccia/pkg/style"
)

const version = "0.1.0"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:     "daccia",
		Short:   "Content assistant for daccia.io",
		Version: version,
		Long: `daccia generates, refines, and publishes content for daccia.io.

It supports:
  - Article generation for Medium and the blog
  - Three content streams (patient, nurse, ED doctor)
  - Iterative Socratic refinement of drafts
  - Style learning from your edits
  - Research: fetch feeds, score relevance, propose topics
  - Publishing to Medium and regenerating the blog section`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(streamCmd())
	rootCmd.AddCommand(refineCmd())
	rootCmd.AddCommand(learnCmd())
	rootCmd.AddCommand(styleCmd())
	rootCmd.AddCommand(researchCmd())
	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(s *config.Settings) *zap.Logger {
	level := zapcore.WarnLevel
	if parsed, err := zapcore.ParseLevel(s.LogLevel); err == nil {
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func loadSettings() (*config.Settings, *zap.Logger, error) {
	s, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return s, newLogger(s), nil
}

// requireAPIKey is checked before any command that talks to the model.
func requireAPIKey(s *config.Settings) error {
	if s.APIKey == "" {
		return errors.New("ANTHROPIC_API_KEY not set. Export it or add api_key to .daccia.yaml")
	}
	return nil
}

func newBackend(s *config.Settings, logger *zap.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:      s.APIKey,
		BaseURL:     s.BaseURL,
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	}, logger)
}

func openStore(ctx context.Context, s *config.Settings) (*storage.ContentStore, func(), error) {
	db, err := storage.New(storage.DefaultConfig(s.DataDir))
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return storage.NewContentStore(db), func() { db.Close() }, nil
}

func loadProfile(s *config.Settings) (*style.Profile, error) {
	return style.Load(s.StyleProfilesDir, style.DefaultUserID)
}

// saveDraft writes the content to the drafts directory and records it in
// the database.
func saveDraft(ctx context.Context, store *storage.ContentStore, s *config.Settings, c content.Generated) (string, error) {
	if err := os.MkdirAll(s.DraftsDir, 0o755); err != nil {
		return "", fmt.Errorf("create drafts dir: %w", err)
	}

	path := draftPath(s.DraftsDir, c.Title, time.Now())
	if err := os.WriteFile(path, []byte(fmt.Sprintf("# %s\n\n%s", c.Title, c.Body)), 0o644); err != nil {
		return "", fmt.Errorf("write draft: %w", err)
	}

	rec := &storage.ContentRecord{
		Title:        c.Title,
		Body:         c.Body,
		ContentType:  string(c.Type),
		Topic:        c.Title,
		WordCount:    content.WordCount(c.Body),
		MetadataJSON: metadataJSON(c.Metadata),
	}
	if err := store.SaveContent(ctx, rec); err != nil {
		return "", err
	}
	return path, nil
}

func metadataJSON(meta map[string]any) string {
	if meta == nil {
		return "{}"
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func draftPath(dir, title string, now time.Time) string {
	slug := strings.ToLower(title)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return fmt.Sprintf("%s/%s_%s.md", dir, now.Format("20060102_150405"), slug)
}
