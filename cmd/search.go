package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/ai"
	"mspro-labs/tea-buddy/internal/logger"
	"mspro-labs/tea-buddy/internal/searcher"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search for teas by 'vibe'",
	Long: `Uses AI to find teas that match the semantic meaning of your query.
Examples:
  tea-buddy search "smoky and malty for a cold morning"
  tea-buddy search "light floral spring green"

History commands:
  tea-buddy search history
  tea-buddy search clear "query string"
  tea-buddy search clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleSearch(args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func handleSearch(args []string) {
	ctx := context.Background()

	// 1. Setup
	st := openLocal()
	defer st.Close()

	command := strings.ToLower(args[0])

	// 2. Commands
	if command == "history" && len(args) == 1 {
		entries, err := st.ListSearchHistory(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list history")
		}
		fmt.Println("📜 Search History (Cached Queries)")
		fmt.Println("------------------------------------")
		if len(entries) == 0 {
			fmt.Println("No history found.")
			return
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.QueryText)
		}
		return
	}

	if command == "clear" {
		if len(args) < 2 {
			log.Fatal().Msg(`Usage: tea-buddy search clear "query text" (or 'all')`)
		}
		target := strings.TrimSpace(strings.Join(args[1:], " "))
		var (
			affected int64
			err      error
		)
		if strings.EqualFold(target, "all") {
			affected, err = st.ClearAllSearchHistory(ctx)
		} else {
			affected, err = st.ClearSearchHistory(ctx, target)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to clear history")
		}
		fmt.Printf("🗑️ Done. Removed %d entry(s) from cache.\n", affected)
		return
	}

	// 3. Perform regular search
	query := strings.Join(args, " ")
	aiClient, err := ai.NewClient(ctx, appCfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI client")
	}
	defer aiClient.Close()

	s := searcher.Searcher{Store: st, Embedder: aiClient, Log: logger.Component("searcher")}
	results, err := s.Search(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Search failed")
	}

	fmt.Printf("\n🔍 Top matches for: \"%s\"\n\n", query)
	if len(results) == 0 {
		fmt.Println("No embedded teas yet. Run 'tea-buddy embed' first.")
		return
	}
	for i, r := range results {
		label := r.Tea.Name
		if r.Tea.Brand != "" {
			label += " - " + r.Tea.Brand
		}
		fmt.Printf("#%d [%.1f%% match] %s (%s)\n", i+1, r.Score*100, label, r.Tea.Type)
		if r.Tea.Description != "" {
			fmt.Printf("   %s\n", truncate(r.Tea.Description, 150))
		}
		fmt.Println()
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}
