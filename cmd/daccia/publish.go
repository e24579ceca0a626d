package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/llm"
	"github.com/daccia/daccia/pkg/prompts"
	"github.com/daccia/daccia/pkg/publish"
	"github.com/daccia/daccia/pkg/site"
	"github.com/daccia/daccia/pkg/storage"
)

var defaultTags = []string{"AI", "healthcare", "XAI"}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish drafts to Medium and update the daccia.io blog",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, settings)
			if err != nil {
				return err
			}
			defer closeStore()

			drafts, err := store.ListContentByStatus(ctx, storage.StatusDraft)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				fmt.Println("No drafts to publish. Generate some articles first.")
				return nil
			}

			fmt.Println("Unpublished drafts:")
			for i, d := range drafts {
				fmt.Printf("  %2d. %-60s %5d words  %s\n",
					i+1, clip(d.Title, 60), d.WordCount, d.CreatedAt.Format("2006-01-02"))
			}

			selected, err := selectDrafts(drafts)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				fmt.Println("No matching drafts selected.")
				return nil
			}

			// Medium is optional: without a token (or when the API fails)
			// the URL is asked for manually.
			var medium *publish.MediumClient
			if settings.MediumToken != "" {
				medium = publish.NewMediumClient(settings.MediumToken)
				if _, err := medium.UserID(ctx); err != nil {
					fmt.Printf("Medium API failed: %v\nWill prompt for URLs manually.\n", err)
					medium = nil
				} else {
					fmt.Println("Medium API connected.")
				}
			} else {
				fmt.Println("No MEDIUM_TOKEN set. Will prompt for URLs manually.")
			}

			backend := newBackend(settings, logger)
			teaserSystem, err := prompts.Render("teaser.tmpl", nil)
			if err != nil {
				return err
			}

			var published int
			for _, draft := range selected {
				fmt.Printf("\n--- %s ---\n", clip(draft.Title, 60))

				var mediumURL string
				if medium != nil {
					post, err := medium.Publish(ctx, draft.Title, draft.Body, publish.PublishOptions{
						Status: settings.MediumPublishStatus,
						Tags:   defaultTags,
					})
					if err != nil {
						fmt.Printf("  Medium publish failed: %v\n", err)
					} else {
						mediumURL = post.URL
						fmt.Printf("  Published to Medium (%s): %s\n", post.PublishStatus, post.URL)
					}
				}
				if mediumURL == "" {
					mediumURL, err = promptLine("  Medium URL (paste or leave blank): ")
					if err != nil {
						return err
					}
				}

				teaser := generateTeaser(ctx, backend, teaserSystem, draft, logger)
				if teaser != "" {
					fmt.Printf("  Teaser: %s\n", teaser)
				}

				if err := store.MarkPublished(ctx, draft.ID, mediumURL, teaser); err != nil {
					fmt.Printf("  Error updating record: %v\n", err)
					continue
				}
				published++
			}

			if err := regenerateBlog(ctx, store, settings.IndexPath(), logger); err != nil {
				return err
			}

			fmt.Printf("\nPublish complete: %d articles\n", published)
			fmt.Printf("Blog updated: %s\n", settings.IndexPath())
			return nil
		},
	}
}

// selectDrafts asks for a comma-separated list of the printed numbers, or
// "all".
func selectDrafts(drafts []*storage.ContentRecord) ([]*storage.ContentRecord, error) {
	line, err := promptLine("\nSelect articles to publish (numbers comma-separated, or 'all'): ")
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(strings.TrimSpace(line), "all") {
		return drafts, nil
	}

	var selected []*storage.ContentRecord
	for _, field := range strings.Split(line, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > len(drafts) {
			return nil, fmt.Errorf("invalid selection %q: use numbers separated by commas", field)
		}
		selected = append(selected, drafts[n-1])
	}
	return selected, nil
}

// generateTeaser is best-effort: a failed teaser never blocks publishing.
func generateTeaser(ctx context.Context, backend *llm.Client, system string, draft *storage.ContentRecord, logger *zap.Logger) string {
	teaser, err := backend.Generate(ctx, system,
		[]llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(
			"Article title: %s\n\nArticle body (first 1000 chars):\n%s",
			draft.Title, clip(draft.Body, 1000),
		)}},
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(150),
	)
	if err != nil {
		logger.Warn("teaser generation failed", zap.String("id", draft.ID), zap.Error(err))
		return ""
	}
	return strings.Trim(strings.TrimSpace(teaser), `"`)
}

func regenerateBlog(ctx context.Context, store *storage.ContentStore, indexPath string, logger *zap.Logger) error {
	records, err := store.ListContentByStatus(ctx, storage.StatusPublished)
	if err != nil {
		return err
	}

	var cards []site.Card
	for _, rec := range records {
		if rec.MediumURL == "" {
			continue
		}
		cards = append(cards, site.Card{
			Title:     rec.Title,
			MediumURL: rec.MediumURL,
			Teaser:    rec.Teaser,
		})
	}
	return site.Regenerate(indexPath, cards, logger)
}

func promptLine(prompt string) (string, error) {
	line, err := readline.Line(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
