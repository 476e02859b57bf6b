// Package embedder fills in the description vectors used by semantic search.
package embedder

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"mspro-labs/tea-buddy/internal/ai"
	"mspro-labs/tea-buddy/internal/models"
)

// Store is the part of the local store the embedder needs.
type Store interface {
	UnembeddedTeas(ctx context.Context) (map[models.ID]string, error)
	UpdateEmbedding(ctx context.Context, id models.ID, embedding []byte) error
}

// Runner embeds every tea that has no vector yet.
type Runner struct {
	Store    Store
	Embedder ai.Embedder
	Log      zerolog.Logger
	// Pause is the wait between calls, keeping under the free tier's rate limit.
	Pause time.Duration
}

// Run returns how many teas were embedded. Errors on single teas are logged
// and skipped.
func (r Runner) Run(ctx context.Context) (int, error) {
	// 1. Find work to do
	targets, err := r.Store.UnembeddedTeas(ctx)
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		r.Log.Info().Msg("All teas are already embedded")
		return 0, nil
	}
	r.Log.Info().Int("count", len(targets)).Msg("Embedding new teas")

	ids := make([]models.ID, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// 2. Process loop
	count := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		text := targets[id]
		r.Log.Debug().Int64("id", int64(id)).Str("text", shorten(text, 40)).Msg("Embedding")

		blob, _, err := r.Embedder.EmbedString(ctx, text)
		if err != nil {
			r.Log.Warn().Err(err).Int64("id", int64(id)).Msg("Error embedding tea")
			r.sleep(ctx)
			continue
		}
		if err := r.Store.UpdateEmbedding(ctx, id, blob); err != nil {
			r.Log.Warn().Err(err).Int64("id", int64(id)).Msg("Error saving embedding")
			continue
		}
		count++
		r.sleep(ctx)
	}

	r.Log.Info().Int("count", count).Msg("Embedding finished")
	return count, nil
}

func (r Runner) sleep(ctx context.Context) {
	if r.Pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(r.Pause):
	}
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
