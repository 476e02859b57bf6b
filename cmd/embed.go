package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/ai"
	"mspro-labs/tea-buddy/internal/embedder"
	"mspro-labs/tea-buddy/internal/logger"
	"mspro-labs/tea-buddy/internal/store"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new teas",
	Long:  `Finds teas in the local database that are missing semantic vectors and generates them using the Gemini API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx := context.Background()

	// 1. Config & DB
	st := openLocal()
	defer st.Close()

	// 2. Initialize AI
	aiClient, err := ai.NewClient(ctx, appCfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI client")
	}
	defer aiClient.Close()

	// 3. Run Shared Embedder Logic
	n, err := newEmbedder(st, aiClient).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Embedding process failed")
	}
	fmt.Printf("🎉 Embedded %d tea(s).\n", n)
}

func newEmbedder(st *store.SQLiteStore, e ai.Embedder) embedder.Runner {
	return embedder.Runner{Store: st, Embedder: e, Log: logger.Component("embedder"), Pause: time.Second}
}

// autoEmbed refreshes vectors after a change when an API key is configured.
// Failures only warn.
func autoEmbed(ctx context.Context, st *store.SQLiteStore) {
	aiClient, err := ai.NewClient(ctx, appCfg.GeminiAPIKey)
	if errors.Is(err, ai.ErrNoAPIKey) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("Could not initialize AI for auto-embedding")
		return
	}
	defer aiClient.Close()

	if _, err := newEmbedder(st, aiClient).Run(ctx); err != nil {
		log.Warn().Err(err).Msg("Auto-embedding failed")
	}
}
