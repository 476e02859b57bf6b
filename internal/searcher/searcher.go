// Package searcher ranks teas against a free-text query by embedding
// similarity.
package searcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"mspro-labs/tea-buddy/internal/ai"
	"mspro-labs/tea-buddy/internal/store"
)

// Limit is the number of results returned.
const Limit = 5

// Store is the part of the local store the searcher needs.
type Store interface {
	TeaVectors(ctx context.Context) ([]store.TeaVector, error)
	CachedQuery(ctx context.Context, text string) ([]byte, error)
	SaveCachedQuery(ctx context.Context, text string, blob []byte) error
}

// Result holds a single search match.
type Result struct {
	Tea   store.TeaVector
	Score float32
}

// Searcher runs semantic searches.
type Searcher struct {
	Store    Store
	Embedder ai.Embedder
	Log      zerolog.Logger
}

// Search returns the best matches for queryText, highest score first.
func (s Searcher) Search(ctx context.Context, queryText string) ([]Result, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, fmt.Errorf("empty search query")
	}

	// 1. Get Query Vector (Try cache first, then AI)
	queryVector, err := s.queryVector(ctx, queryText)
	if err != nil {
		return nil, err
	}

	// 2. Load all tea vectors
	teas, err := s.Store.TeaVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teas: %w", err)
	}

	// 3. Compare and score
	results := make([]Result, 0, len(teas))
	for _, tea := range teas {
		vec, err := ai.BytesToFloats(tea.Vector)
		if err != nil {
			s.Log.Warn().Err(err).Int64("id", int64(tea.ID)).Msg("Skipping unreadable vector")
			continue
		}
		results = append(results, Result{Tea: tea, Score: ai.CosineSimilarity(queryVector, vec)})
	}

	// 4. Sort by descending score
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > Limit {
		results = results[:Limit]
	}
	return results, nil
}

// queryVector reads the query's vector from the cache, embedding and
// caching it on a miss.
func (s Searcher) queryVector(ctx context.Context, text string) ([]float32, error) {
	if blob, err := s.Store.CachedQuery(ctx, text); err == nil {
		return ai.BytesToFloats(blob)
	}

	s.Log.Info().Str("query", text).Msg("Cache miss, calling Gemini")
	blob, floats, err := s.Embedder.EmbedString(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// A failed cache write does not fail the search.
	if err := s.Store.SaveCachedQuery(ctx, text, blob); err != nil {
		s.Log.Warn().Err(err).Msg("Failed to save query to cache")
	}
	return floats, nil
}
