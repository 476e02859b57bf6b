package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]ID{
		`7`:                7,
		`"12"`:             12,
		`" 3 "`:            3,
		`"local-lx2k-abc"`: 0,
		`null`:             0,
	}
	for in, want := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(in), &id), in)
		assert.Equal(t, want, id, in)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &id))
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestTeaDefaultsAndSnakeCase(t *testing.T) {
	var tea Tea
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Sencha"}`), &tea))
	assert.True(t, tea.InStock)
	assert.False(t, tea.IsWishlist)

	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "4", "name": "Assam", "image_url": "https://x/a.jpg", "in_stock": false,
		"is_wishlist": true, "stock_grams": 80, "created_at": "2025-01-01T00:00:00Z"
	}`), &tea))
	assert.Equal(t, ID(4), tea.ID)
	assert.Equal(t, "https://x/a.jpg", tea.ImageURL)
	assert.False(t, tea.InStock)
	assert.True(t, tea.IsWishlist)
	require.NotNil(t, tea.StockGrams)
	assert.Equal(t, 80.0, *tea.StockGrams)
	assert.Equal(t, "2025-01-01T00:00:00Z", tea.CreatedAt)
	assert.Equal(t, "Medium", tea.StockLabel())
}

func TestCamelCaseWinsOverSnakeCase(t *testing.T) {
	var tea Tea
	require.NoError(t, json.Unmarshal([]byte(`{"inStock": true, "in_stock": false, "imageUrl": "a", "image_url": "b"}`), &tea))
	assert.True(t, tea.InStock)
	assert.Equal(t, "a", tea.ImageURL)
}

func TestStockLabel(t *testing.T) {
	g := func(v float64) *float64 { return &v }
	assert.Equal(t, "", Tea{}.StockLabel())
	assert.Equal(t, "Very low", Tea{StockGrams: g(25)}.StockLabel())
	assert.Equal(t, "Low", Tea{StockGrams: g(50)}.StockLabel())
	assert.Equal(t, "Medium", Tea{StockGrams: g(100)}.StockLabel())
	assert.Equal(t, "Plenty", Tea{StockGrams: g(100.5)}.StockLabel())
}

func TestShopURLPatternsAlias(t *testing.T) {
	var s Shop
	require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "name": "Twinings", "url_patterns": ["twinings"]}`), &s))
	assert.Equal(t, []string{"twinings"}, s.URLPatterns)
}

func TestExtractionFound(t *testing.T) {
	ex := Extraction{Title: "Sencha", ImageURL: "https://x/s.jpg", DetectedType: "Green"}
	assert.Equal(t, []string{"name", "image", "type"}, ex.Found())
	assert.Nil(t, Extraction{}.Found())
}
