package spreadsheet

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mspro-labs/tea-buddy/internal/models"
)

func sample() ([]models.Tea, []models.Shop) {
	grams := 30.0
	teas := []models.Tea{
		{ID: 1, Name: "Dragon Well", Type: "Green", Brand: "Golden Dragon", InStock: true, StockGrams: &grams, Rating: 5},
		{ID: 2, Name: "Earl Grey", Type: "Black"},
	}
	shops := []models.Shop{
		{ID: 1, Name: "Mariage Frères", Variations: []string{"mariage freres", "mf"}, URLPatterns: []string{"mariagefreres"}},
	}
	return teas, shops
}

func TestWrite(t *testing.T) {
	teas, shops := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, teas, shops))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TeaSheet, ShopSheet}, f.GetSheetList())

	rows, err := f.GetRows(TeaSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "name", rows[0][1])
	assert.Equal(t, "Dragon Well", rows[1][1])
	assert.Equal(t, "TRUE", rows[1][13])
	assert.Equal(t, "30", rows[1][15])
	assert.Equal(t, "Low", rows[1][16])
	assert.Equal(t, "5", rows[1][17])
	assert.Equal(t, "Earl Grey", rows[2][1])

	shopRows, err := f.GetRows(ShopSheet)
	require.NoError(t, err)
	require.Len(t, shopRows, 2)
	assert.Equal(t, "mariage freres, mf", shopRows[1][2])
}

func TestSave(t *testing.T) {
	teas, shops := sample()
	path := filepath.Join(t.TempDir(), "exports", "tea.xlsx")
	require.NoError(t, Save(path, teas, shops))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(TeaSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Dragon Well", v)
}
