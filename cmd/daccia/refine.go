package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/daccia/daccia/pkg/content"
)

func refineCmd() *cobra.Command {
	var (
		filePath   string
		noSocratic bool
	)

	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Interactively refine a draft with Socratic feedback",
		Long: `Load a draft and revise it in a feedback loop. Each round of feedback
produces a complete revised article. Type "done" to finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := requireAPIKey(settings); err != nil {
				return err
			}

			raw, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			title, body := content.SplitTitleBody(string(raw))
			if title == "" {
				title = "Untitled"
			}

			refiner := content.NewRefiner(newBackend(settings, logger))

			ctx := cmd.Context()
			fmt.Printf("Loaded: %s\n", title)
			ack, err := refiner.StartRefinement(ctx, content.Generated{
				Title: title,
				Body:  body,
				Type:  content.TypeMediumArticle,
			})
			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", ack)

			rl, err := readline.New("feedback> ")
			if err != nil {
				return err
			}
			defer rl.Close()

			for {
				fmt.Println("\nEnter feedback, or 'done' to finish.")
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}

				feedback := strings.TrimSpace(line)
				if feedback == "" {
					continue
				}
				switch strings.ToLower(feedback) {
				case "done", "quit", "exit", "q":
					return nil
				}

				revised, err := refiner.Refine(ctx, feedback, !noSocratic)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s\n", revised)
				fmt.Printf("\n[revision #%d]\n", refiner.RevisionCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to the draft to refine")
	cmd.Flags().BoolVar(&noSocratic, "no-socratic", false, "Skip clarifying questions")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
