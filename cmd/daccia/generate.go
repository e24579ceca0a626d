package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/config"
	"github.com/daccia/daccia/pkg/content"
)

func generateCmd() *cobra.Command {
	var (
		topic       string
		contentType string
		words       int
		points      []string
		refs        []string
		noSave      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an article or blog post",
		Example: `  daccia generate --topic "alarm fatigue in the ICU"
  daccia generate -t "sepsis prediction" -T blog -w 800 -p "explainability" -p "nurse workflows"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			ct, err := articleType(contentType)
			if err != nil {
				return err
			}

			profile, err := loadProfile(settings)
			if err != nil {
				return err
			}

			backend := newBackend(settings, logger)
			gen := content.NewArticleGenerator(backend, profile)

			req := content.NewRequest(topic, ct)
			req.TargetWordCount = words
			req.KeyPoints = points
			req.References = refs

			ctx := cmd.Context()
			fmt.Println("Generating article...")
			got, err := gen.Generate(ctx, req)
			if err != nil {
				return err
			}

			printGenerated(got)
			fmt.Printf("\nTokens: %+v\n", backend.Usage())

			if noSave {
				return nil
			}
			return saveAndReport(ctx, settings, got, logger)
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Article topic")
	cmd.Flags().StringVarP(&contentType, "type", "T", "medium", "Content type (medium, blog)")
	cmd.Flags().IntVarP(&words, "words", "w", 1500, "Target word count")
	cmd.Flags().StringArrayVarP(&points, "points", "p", nil, "Key points to cover (repeatable)")
	cmd.Flags().StringArrayVarP(&refs, "ref", "r", nil, "References to incorporate (repeatable)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print only, do not save a draft")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func batchCmd() *cobra.Command {
	var (
		filePath    string
		contentType string
		words       int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate articles for every topic in a file",
		Long: `Generate articles for every topic in a file, one topic per line.
Blank lines and lines starting with # are skipped. All drafts are saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := readTopicsFile(filePath)
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				fmt.Println("No topics found in file.")
				return nil
			}

			fmt.Printf("Batch: %d topics from %s\n", len(topics), filePath)
			for i, topic := range topics {
				fmt.Printf("  %d. %s\n", i+1, topic)
			}
			if dryRun {
				fmt.Println("Dry run, no articles generated.")
				return nil
			}

			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			ct, err := articleType(contentType)
			if err != nil {
				return err
			}
			profile, err := loadProfile(settings)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, settings)
			if err != nil {
				return err
			}
			defer closeStore()

			backend := newBackend(settings, logger)
			gen := content.NewArticleGenerator(backend, profile)

			var succeeded int
			var failed []string
			for i, topic := range topics {
				fmt.Printf("\n--- %d/%d: %s ---\n", i+1, len(topics), topic)

				req := content.NewRequest(topic, ct)
				req.TargetWordCount = words

				got, err := gen.Generate(ctx, req)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					failed = append(failed, topic)
					continue
				}

				fmt.Printf("%s (%v words, %vs)\n", got.Title,
					got.Metadata["word_count"], got.Metadata["generation_time_seconds"])

				path, err := saveDraft(ctx, store, settings, got)
				if err != nil {
					fmt.Printf("Error saving draft: %v\n", err)
					failed = append(failed, topic)
					continue
				}
				fmt.Printf("Saved to %s\n", path)
				succeeded++
			}

			fmt.Printf("\nBatch complete: %d/%d succeeded\n", succeeded, len(topics))
			for _, topic := range failed {
				fmt.Printf("  failed: %s\n", topic)
			}
			fmt.Printf("Token usage: %+v\n", backend.Usage())
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Text file with one topic per line")
	cmd.Flags().StringVarP(&contentType, "type", "T", "medium", "Content type for all articles (medium, blog)")
	cmd.Flags().IntVarP(&words, "words", "w", 1500, "Target word count")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List topics without generating")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func streamCmd() *cobra.Command {
	var (
		streamName string
		topic      string
		words      int
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Generate content for a stream (patient, nurse, doctor)",
		RunE: func(cmd *cobra.Command, args []string) error {
			streamTypes := map[string]content.Type{
				"patient": content.TypePatientConversation,
				"nurse":   content.TypeAskANurse,
				"doctor":  content.TypeAskAnEDDoctor,
			}
			ct, ok := streamTypes[streamName]
			if !ok {
				return fmt.Errorf("unknown stream %q (want patient, nurse, or doctor)", streamName)
			}

			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			profile, err := loadProfile(settings)
			if err != nil {
				return err
			}

			gen := content.NewStreamGenerator(newBackend(settings, logger), profile)

			req := content.NewRequest(topic, ct)
			req.TargetWordCount = words

			ctx := cmd.Context()
			fmt.Printf("Generating %s content...\n", streamName)
			got, err := gen.Generate(ctx, req)
			if err != nil {
				return err
			}

			printGenerated(got)
			if noSave {
				return nil
			}
			return saveAndReport(ctx, settings, got, logger)
		},
	}

	cmd.Flags().StringVarP(&streamName, "stream", "s", "", "Content stream (patient, nurse, doctor)")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic")
	cmd.Flags().IntVarP(&words, "words", "w", 1000, "Target word count")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print only, do not save a draft")
	_ = cmd.MarkFlagRequired("stream")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func articleType(flag string) (content.Type, error) {
	switch flag {
	case "medium":
		return content.TypeMediumArticle, nil
	case "blog":
		return content.TypeBlogPost, nil
	default:
		return "", fmt.Errorf("unknown content type %q (want medium or blog)", flag)
	}
}

func readTopicsFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var topics []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, strings.Trim(line, `"'`))
	}
	return topics, nil
}

func printGenerated(c content.Generated) {
	fmt.Printf("\n# %s\n\n%s\n", c.Title, c.Body)
	if wc, ok := c.Metadata["word_count"]; ok {
		fmt.Printf("\n[%v words", wc)
		if secs, ok := c.Metadata["generation_time_seconds"]; ok {
			fmt.Printf(" | %vs", secs)
		}
		fmt.Println("]")
	}
}

func saveAndReport(ctx context.Context, settings *config.Settings, c content.Generated, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer closeStore()

	path, err := saveDraft(ctx, store, settings, c)
	if err != nil {
		return err
	}
	logger.Debug("draft saved", zap.String("path", path))
	fmt.Printf("Saved to %s\n", path)
	return nil
}
