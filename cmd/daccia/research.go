package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daccia/daccia/pkg/research"
	"github.com/daccia/daccia/pkg/storage"
)

const relevanceThreshold = 5

func researchCmd() *cobra.Command {
	var maxArticles int

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Fetch and analyze AI+healthcare articles, propose topics",
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

			fetcher := research.NewFetcher(logger)
			backend := newBackend(settings, logger)
			analyzer := research.NewAnalyzer(backend, logger)
			proposer := research.NewProposer(backend, logger)

			// A broken feed never aborts the run.
			var articles []*research.Article
			for _, feedURL := range settings.ResearchFeeds {
				fetched, err := fetcher.FetchFeed(ctx, feedURL, maxArticles)
				if err != nil {
					logger.Warn("feed fetch failed", zap.String("feed", feedURL), zap.Error(err))
					fmt.Printf("Error fetching %s: %v\n", feedURL, err)
					continue
				}
				fmt.Printf("  %d articles from %s\n", len(fetched), feedURL)
				articles = append(articles, fetched...)
			}
			if len(articles) == 0 {
				fmt.Println("No articles fetched. Check your feed URLs.")
				return nil
			}
			fmt.Printf("\nFetched %d articles total\n\n", len(articles))

			var analyses []*research.Analysis
			for _, article := range articles {
				known, err := store.IsKnownArticle(ctx, article.ContentHash)
				if err != nil {
					return err
				}
				if known {
					logger.Debug("skipping already analyzed article", zap.String("article", article.ID()))
					continue
				}

				fetcher.FetchFullText(ctx, article)

				analysis, err := analyzer.Analyze(ctx, article)
				if err != nil {
					logger.Warn("analysis failed", zap.String("article", article.ID()), zap.Error(err))
					continue
				}
				analyses = append(analyses, analysis)

				if err := store.SaveAnalysis(ctx, &storage.ResearchRecord{
					URL:               article.URL,
					Title:             article.Title,
					Source:            article.Source,
					RelevanceScore:    analysis.RelevanceScore,
					Summary:           analysis.Summary,
					ContentAnglesJSON: anglesJSON(analysis.ContentAngles),
					ContentHash:       article.ContentHash,
				}); err != nil {
					return err
				}
			}

			var relevant []*research.Analysis
			for _, a := range analyses {
				if a.RelevanceScore >= relevanceThreshold {
					relevant = append(relevant, a)
				}
			}
			fmt.Printf("Found %d relevant articles (score >= %d)\n\n", len(relevant), relevanceThreshold)
			if len(relevant) == 0 {
				fmt.Println("No highly relevant articles found in this batch.")
				return nil
			}

			sort.Slice(relevant, func(i, j int) bool {
				return relevant[i].RelevanceScore > relevant[j].RelevanceScore
			})
			fmt.Println("Top research findings:")
			for _, a := range relevant {
				fmt.Printf("  [%2.0f] %s\n", a.RelevanceScore, a.Title)
				if len(a.ContentAngles) > 0 {
					fmt.Printf("       angles: %s\n", strings.Join(a.ContentAngles, ", "))
				}
			}

			existing, err := store.ListProposals(ctx, storage.ProposalProposed)
			if err != nil {
				return err
			}
			existingTitles := make([]string, 0, len(existing))
			for _, p := range existing {
				existingTitles = append(existingTitles, p.Title)
			}

			fmt.Println("\nGenerating topic proposals...")
			proposals, err := proposer.Propose(ctx, relevant, existingTitles, 5)
			if err != nil {
				return err
			}
			if len(proposals) == 0 {
				fmt.Println("No proposals this round.")
				return nil
			}

			records := make([]*storage.ProposalRecord, 0, len(proposals))
			fmt.Println("\nProposed topics:")
			for i, p := range proposals {
				fmt.Printf("  %d. %s\n", i+1, p.Title)
				fmt.Printf("     Type: %s | Urgency: %s\n", p.ContentType, p.Urgency)
				if p.Angle != "" {
					fmt.Printf("     Angle: %s\n", p.Angle)
				}
				fmt.Println()

				records = append(records, &storage.ProposalRecord{
					Title:              p.Title,
					ContentType:        p.ContentType,
					Angle:              p.Angle,
					Urgency:            p.Urgency,
					SourceArticlesJSON: anglesJSON(p.SourceArticles),
				})
			}
			return store.SaveProposals(ctx, records)
		},
	}

	cmd.Flags().IntVarP(&maxArticles, "max-articles", "n", 20, "Max articles to fetch per feed")

	return cmd
}

func anglesJSON(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
