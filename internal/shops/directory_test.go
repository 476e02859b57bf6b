package shops

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/tea-buddy/internal/lexicon"
	"mspro-labs/tea-buddy/internal/models"
)

func seeded() *Directory {
	return NewDirectory(lexicon.Default().SeedShops())
}

func TestFind(t *testing.T) {
	dir := seeded()

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"hostname via url pattern", "www.palaisdesthes.com", "Palais des Thés", true},
		{"bare variation", "palais-des-thes", "Palais des Thés", true},
		{"display name", "Mariage Frères", "Mariage Frères", true},
		{"domain segment", "kusmitea", "Kusmi Tea", true},
		{"url pattern inside longer host", "shop.fortnumandmason.co.uk", "Fortnum & Mason", true},
		{"name with ampersand", "Fortnum & Mason", "Fortnum & Mason", true},
		{"unknown brand", "Unknown Brand", "", false},
		{"empty", "", "", false},
		{"punctuation only", "--", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop, ok := dir.Find(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, shop.Name)
		})
	}
}

func TestFindByHostname(t *testing.T) {
	dir := NewDirectory([]models.Shop{{
		ID:          1,
		Name:        "Palais des Thés",
		Variations:  []string{"palaisdesthes"},
		URLPatterns: []string{"palaisdesthes"},
	}})

	shop, ok := dir.Find("www.palaisdesthes.com")
	require.True(t, ok)
	assert.Equal(t, models.ID(1), shop.ID)

	_, ok = dir.Find("Unknown Brand")
	assert.False(t, ok)
}

func TestFindDirectoryOrderWins(t *testing.T) {
	dir := NewDirectory([]models.Shop{
		{ID: 1, Name: "First", URLPatterns: []string{"tea"}},
		{ID: 2, Name: "Second", Variations: []string{"greatteashop"}},
	})

	// Both shops match; the earlier one wins even though the later one
	// matches on an exact variation.
	shop, ok := dir.Find("greatteashop")
	require.True(t, ok)
	assert.Equal(t, "First", shop.Name)
}

func TestFindIgnoresEmptyPatterns(t *testing.T) {
	dir := NewDirectory([]models.Shop{{ID: 1, Name: "Blank", URLPatterns: []string{"", "--"}}})
	_, ok := dir.Find("anything")
	assert.False(t, ok)
}

func TestAddAssignsNextID(t *testing.T) {
	dir := NewDirectory(nil)

	first, err := dir.Add(models.Shop{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(1), first.ID)

	second, err := dir.Add(models.Shop{ID: 99, Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(2), second.ID)

	_, err = dir.Add(models.Shop{Name: "  "})
	assert.Error(t, err)
}

func TestAddReusesIDAfterDeletingHighest(t *testing.T) {
	dir := seeded()

	require.NoError(t, dir.Delete(7))
	added, err := dir.Add(models.Shop{Name: "Camellia Sinensis"})
	require.NoError(t, err)
	assert.Equal(t, models.ID(7), added.ID)
}

func TestUpdateAndDelete(t *testing.T) {
	dir := seeded()

	updated, err := dir.Update(6, models.Shop{Name: "Twinings London", Variations: []string{"twinings"}})
	require.NoError(t, err)
	assert.Equal(t, models.ID(6), updated.ID)

	list := dir.List()
	assert.Equal(t, "Twinings London", list[5].Name)

	_, err = dir.Update(42, models.Shop{Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, dir.Delete(1))
	assert.Equal(t, 6, dir.Len())
	_, ok := dir.Get(1)
	assert.False(t, ok)

	assert.ErrorIs(t, dir.Delete(1), ErrNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	dir := seeded()
	list := dir.List()
	list[0].Variations[0] = "mutated"

	shop, ok := dir.Get(1)
	require.True(t, ok)
	assert.Equal(t, "lepartiduthe", shop.Variations[0])
}

func TestConcurrentAdds(t *testing.T) {
	dir := NewDirectory(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = dir.Add(models.Shop{Name: "shop"})
			_, _ = dir.Find("shop")
		}()
	}
	wg.Wait()

	seen := map[models.ID]bool{}
	for _, s := range dir.List() {
		assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
		seen[s.ID] = true
	}
	assert.Len(t, seen, 20)
}
