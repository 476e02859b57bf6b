package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mspro-labs/tea-buddy/internal/models"
)

// --- Embedding & Search Helpers ---

// TeaVector is a tea with its stored description embedding.
type TeaVector struct {
	ID          models.ID
	Name        string
	Brand       string
	Type        string
	Description string
	Vector      []byte
}

// UnembeddedTeas returns the text to embed for every tea without a vector,
// keyed by tea id.
func (s *SQLiteStore) UnembeddedTeas(ctx context.Context) (map[models.ID]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(brand, ''), COALESCE(type, ''), COALESCE(description, '')
		FROM teas WHERE description_embedding IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[models.ID]string)
	for rows.Next() {
		var (
			id                     int64
			name, brand, typ, desc string
		)
		if err := rows.Scan(&id, &name, &brand, &typ, &desc); err != nil {
			return nil, err
		}
		// Name, brand and type give short descriptions something to match on.
		results[models.ID(id)] = fmt.Sprintf("Tea: %s\nBrand: %s\nType: %s\nDescription: %s", name, brand, typ, desc)
	}
	return results, rows.Err()
}

// UpdateEmbedding saves the generated vector blob for a tea.
func (s *SQLiteStore) UpdateEmbedding(ctx context.Context, id models.ID, embedding []byte) error {
	_, err := s.db.ExecContext(ctx, "UPDATE teas SET description_embedding = ? WHERE id = ?", embedding, int64(id))
	return err
}

// TeaVectors returns every tea that has an embedding.
func (s *SQLiteStore) TeaVectors(ctx context.Context) ([]TeaVector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(brand, ''), COALESCE(type, ''), COALESCE(description, ''), description_embedding
		FROM teas WHERE description_embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TeaVector
	for rows.Next() {
		var (
			tv TeaVector
			id int64
		)
		if err := rows.Scan(&id, &tv.Name, &tv.Brand, &tv.Type, &tv.Description, &tv.Vector); err != nil {
			return nil, err
		}
		tv.ID = models.ID(id)
		results = append(results, tv)
	}
	return results, rows.Err()
}

// CachedQuery returns a previously embedded query vector, or sql.ErrNoRows.
func (s *SQLiteStore) CachedQuery(ctx context.Context, text string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery stores a query and its vector in the history table.
func (s *SQLiteStore) SaveCachedQuery(ctx context.Context, text string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)", text, blob)
	return err
}

// --- History Management for search ---

type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func (s *SQLiteStore) ListSearchHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT query_text, created_at FROM search_history ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e  HistoryEntry
			ts sql.NullTime
		)
		if err := rows.Scan(&e.QueryText, &ts); err != nil {
			return nil, err
		}
		e.CreatedAt = ts.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearSearchHistory removes one query from the cache.
func (s *SQLiteStore) ClearSearchHistory(ctx context.Context, queryText string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE query_text = ?", queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire cache.
func (s *SQLiteStore) ClearAllSearchHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM search_history")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
