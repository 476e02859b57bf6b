package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/tea-buddy/internal/models"
)

func openTestStore(t *testing.T, seed []models.Shop) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "tea.db"), seed)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTeaCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, nil)

	grams := 40.0
	added, err := s.AddTea(ctx, models.Tea{
		Name: "Dragon Well", Type: "Green", Brand: "Golden Dragon Tea Co.",
		Temperature: "75-80°C", InStock: true, StockGrams: &grams, Rating: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID(1), added.ID)
	assert.NotEmpty(t, added.CreatedAt)
	require.NotNil(t, added.StockGrams)
	assert.Equal(t, 40.0, *added.StockGrams)
	assert.Equal(t, 4, added.Rating)

	added.InStock = false
	added.Origin = "China"
	updated, err := s.UpdateTea(ctx, added)
	require.NoError(t, err)
	assert.False(t, updated.InStock)
	assert.Equal(t, "China", updated.Origin)
	assert.Equal(t, added.CreatedAt, updated.CreatedAt)

	n, err := s.CountTeas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteTea(ctx, added.ID))
	_, err = s.GetTea(ctx, added.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTea(ctx, added.ID), ErrNotFound)
}

func TestAddTeaRequiresName(t *testing.T) {
	s := openTestStore(t, nil)
	_, err := s.AddTea(context.Background(), models.Tea{Name: "  "})
	assert.Error(t, err)
}

func TestUpdateMissingTea(t *testing.T) {
	s := openTestStore(t, nil)
	_, err := s.UpdateTea(context.Background(), models.Tea{ID: 99, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedShopsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tea.db")
	seed := []models.Shop{
		{Name: "Mariage Frères", Variations: []string{"mariage freres"}, URLPatterns: []string{"mariagefreres"}},
		{Name: "Twinings"},
	}

	s, err := OpenSQLite(path, seed)
	require.NoError(t, err)
	shops, err := s.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Mariage Frères", shops[0].Name)
	assert.Equal(t, []string{"mariagefreres"}, shops[0].URLPatterns)
	assert.Equal(t, []string{}, shops[1].Variations)

	require.NoError(t, s.SaveShops(ctx, nil))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, seed)
	require.NoError(t, err)
	defer s.Close()
	shops, err = s.ListShops(ctx)
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestSaveShopsKeepsOrderAndIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, nil)

	require.NoError(t, s.SaveShops(ctx, []models.Shop{
		{ID: 9, Name: "Zeta"},
		{ID: 2, Name: "Alpha"},
		{ID: 2, Name: "Duplicate id"},
	}))

	shops, err := s.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 3)
	assert.Equal(t, "Zeta", shops[0].Name)
	assert.Equal(t, models.ID(9), shops[0].ID)
	assert.Equal(t, models.ID(2), shops[1].ID)
	assert.Equal(t, "Duplicate id", shops[2].Name)
	assert.Equal(t, models.ID(10), shops[2].ID)
}

func TestInsertShopsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, []models.Shop{{Name: "Twinings", Website: "https://twinings.co.uk"}})

	n, err := s.InsertShops(ctx, []models.Shop{
		{Name: " twinings ", Website: "https://TWININGS.co.uk"},
		{Name: "Palais des Thés"},
		{Name: "palais des thés"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	shops, err := s.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Palais des Thés", shops[1].Name)
}

func TestReplaceCollection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, []models.Shop{{Name: "Twinings"}})

	_, err := s.AddTea(ctx, models.Tea{Name: "Old tea"})
	require.NoError(t, err)

	incoming := []models.Tea{
		{ID: 5, Name: "Assam", InStock: true},
		{ID: 5, Name: "Sencha", CreatedAt: "2025-01-02T03:04:05Z"},
	}
	require.NoError(t, s.ReplaceCollection(ctx, incoming, nil))

	teas, err := s.ListTeas(ctx)
	require.NoError(t, err)
	require.Len(t, teas, 2)
	assert.Equal(t, models.ID(5), teas[0].ID)
	assert.Equal(t, "Assam", teas[0].Name)
	assert.Equal(t, models.ID(6), teas[1].ID)
	assert.Equal(t, "2025-01-02T03:04:05Z", teas[1].CreatedAt)

	shops, err := s.ListShops(ctx)
	require.NoError(t, err)
	assert.Len(t, shops, 1, "nil shops leaves the directory alone")

	require.NoError(t, s.ReplaceCollection(ctx, nil, []models.Shop{}))
	n, err := s.CountTeas(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	shops, err = s.ListShops(ctx)
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestReplaceCollectionMixedIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, nil)

	require.NoError(t, s.ReplaceCollection(ctx, []models.Tea{
		{Name: "No id"},
		{ID: 1, Name: "Has id"},
	}, nil))

	teas, err := s.ListTeas(ctx)
	require.NoError(t, err)
	require.Len(t, teas, 2)
	assert.Equal(t, "Has id", teas[0].Name)
	assert.Equal(t, models.ID(1), teas[0].ID)
	assert.Equal(t, models.ID(2), teas[1].ID)
}

func TestEmbeddingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, nil)

	tea, err := s.AddTea(ctx, models.Tea{Name: "Gyokuro", Brand: "Ippodo", Type: "Green", Description: "Shaded."})
	require.NoError(t, err)

	pending, err := s.UnembeddedTeas(ctx)
	require.NoError(t, err)
	require.Contains(t, pending, tea.ID)
	assert.Contains(t, pending[tea.ID], "Tea: Gyokuro")
	assert.Contains(t, pending[tea.ID], "Brand: Ippodo")

	require.NoError(t, s.UpdateEmbedding(ctx, tea.ID, []byte{1, 2, 3, 4}))
	pending, err = s.UnembeddedTeas(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	vectors, err := s.TeaVectors(ctx)
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, vectors[0].Vector)

	// Editing a tea invalidates its vector.
	_, err = s.UpdateTea(ctx, tea)
	require.NoError(t, err)
	pending, err = s.UnembeddedTeas(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, nil)

	_, err := s.CachedQuery(ctx, "smoky")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, s.SaveCachedQuery(ctx, "smoky", []byte{9}))
	require.NoError(t, s.SaveCachedQuery(ctx, "floral", []byte{8}))

	blob, err := s.CachedQuery(ctx, "smoky")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, blob)

	entries, err := s.ListSearchHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	n, err := s.ClearSearchHistory(ctx, "smoky")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.ClearAllSearchHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
