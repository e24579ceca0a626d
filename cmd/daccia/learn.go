package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daccia/daccia/pkg/storage"
	"github.com/daccia/daccia/pkg/style"
)

func learnCmd() *cobra.Command {
	var originalPath, editedPath string

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Analyze an edited draft to learn your writing style",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			original, err := os.ReadFile(originalPath)
			if err != nil {
				return err
			}
			edited, err := os.ReadFile(editedPath)
			if err != nil {
				return err
			}

			profile, err := loadProfile(settings)
			if err != nil {
				return err
			}

			analyzer := style.NewAnalyzer(newBackend(settings, logger), logger)

			ctx := cmd.Context()
			fmt.Println("Analyzing your edits...")
			updated, err := analyzer.AnalyzeEdit(ctx, string(original), string(edited), profile)
			if err != nil {
				return err
			}
			if err := updated.Save(settings.StyleProfilesDir); err != nil {
				return err
			}

			store, closeStore, err := openStore(ctx, settings)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.SaveEdit(ctx, &storage.EditRecord{
				OriginalHash: hashText(string(original)),
				EditedHash:   hashText(string(edited)),
				AnalysisJSON: dimensionsJSON(updated),
			}); err != nil {
				return err
			}

			fmt.Println("Style profile updated.")
			fmt.Printf("Total edits analyzed: %d\n\n", updated.EditCount)
			printDimensions(updated, 0.1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&originalPath, "original", "o", "", "Path to the original generated draft")
	cmd.Flags().StringVarP(&editedPath, "edited", "e", "", "Path to your edited version")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("edited")

	return cmd
}

func styleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "style",
		Short: "Show your current learned style profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()

			profile, err := loadProfile(settings)
			if err != nil {
				return err
			}

			fmt.Printf("\nStyle Profile (based on %d edits)\n\n", profile.EditCount)
			if profile.EditCount == 0 {
				fmt.Println("No edits analyzed yet. Use 'daccia learn' to teach the system your writing style.")
				fmt.Println()
			}
			printDimensions(profile, 0)
			return nil
		},
	}
}

func printDimensions(p *style.Profile, minConfidence float64) {
	for _, key := range style.DimensionKeys {
		dim, ok := p.Dimensions[key]
		if !ok || dim.Confidence < minConfidence {
			continue
		}

		filled := int(dim.Confidence * 10)
		bar := strings.Repeat("+", filled) + strings.Repeat("-", 10-filled)
		fmt.Printf("  %s: %s\n", dim.Name, dim.Value)
		fmt.Printf("    Confidence: %s (%.0f%%)\n", bar, dim.Confidence*100)
		if example := dim.LatestExample(); example != "" {
			fmt.Printf("    Latest example: %q\n", example)
		}
		fmt.Println()
	}
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func dimensionsJSON(p *style.Profile) string {
	raw, err := json.Marshal(p.Dimensions)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
