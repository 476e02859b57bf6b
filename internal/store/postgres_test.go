package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mspro-labs/tea-buddy/internal/models"
)

func TestUniqueShopsDropsRepeatedIdentity(t *testing.T) {
	got := uniqueShops([]models.Shop{
		{ID: 1, Name: "Twinings", Website: "https://twinings.co.uk"},
		{ID: 2, Name: " TWININGS ", Website: "https://Twinings.co.uk"},
		{ID: 3, Name: "Twinings", Website: "https://twinings.com"},
		{ID: 4, Name: "Kusmi Tea"},
		{ID: 5, Name: "kusmi tea"},
	})

	ids := make([]models.ID, 0, len(got))
	for _, sh := range got {
		ids = append(ids, sh.ID)
	}
	assert.Equal(t, []models.ID{1, 3, 4}, ids)
}

func TestExplicitIDsInsertFirst(t *testing.T) {
	ids := keptIDs(4, func(i int) models.ID { return []models.ID{0, 1, 1, 7}[i] })
	assert.Equal(t, []any{nil, int64(1), nil, int64(7)}, ids)
	assert.Equal(t, []int{1, 3, 0, 2}, explicitFirst(ids))
}
