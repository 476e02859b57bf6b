package reconcile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/tea-buddy/internal/models"
)

type memTarget struct {
	teas     []models.Tea
	shops    []models.Shop
	replaced bool
}

func (m *memTarget) CountTeas(context.Context) (int, error) { return len(m.teas), nil }

func (m *memTarget) ReplaceCollection(_ context.Context, teas []models.Tea, shops []models.Shop) error {
	m.replaced = true
	m.teas = teas
	if shops != nil {
		m.shops = shops
	}
	return nil
}

func grams(v float64) *float64 { return &v }

func sampleTeas() []models.Tea {
	return []models.Tea{
		{
			ID: 1, Name: "Dragon Well", Type: "Green", Brand: "Golden Dragon Tea Co.",
			Temperature: "75-80°C", Time: "2-3 min", Method: "Gongfu", Quantity: "6g",
			Infusions: "30s, 45s, 1m30s, 3m, 5m", InStock: true,
			Description: "Spring 2025. Lishan.", Origin: "China", StockGrams: grams(40),
		},
		{
			ID: 2, Name: "Earl Grey Supreme", Type: "Black", Brand: "Twinings",
			Temperature: "95°C", Time: "4-5 min", Method: "Western", InStock: false,
			IsWishlist: true, URL: "https://www.twinings.co.uk/earl-grey", ImageURL: "https://cdn.example/eg.jpg",
		},
	}
}

func TestDecodeRejectsMissingOrMalformedTeas(t *testing.T) {
	cases := map[string]string{
		"not json":     `{teas`,
		"array root":   `[]`,
		"missing teas": `{"shops": []}`,
		"teas object":  `{"teas": {"name": "x"}}`,
		"teas null":    `{"teas": null}`,
		"teas string":  `{"teas": "[]"}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestDecodeAcceptsSnakeCaseAndDefaults(t *testing.T) {
	input := `{
		"teas": [
			{"id": "7", "name": "Assam", "image_url": "https://x/a.jpg", "in_stock": false, "stock_grams": 12},
			{"id": "local-lx2k-abc", "name": "Sencha"}
		],
		"shops": "not an array"
	}`

	p, err := Decode([]byte(input))
	require.NoError(t, err)
	require.Len(t, p.Teas, 2)

	assert.Equal(t, models.ID(7), p.Teas[0].ID)
	assert.Equal(t, "https://x/a.jpg", p.Teas[0].ImageURL)
	assert.False(t, p.Teas[0].InStock)
	require.NotNil(t, p.Teas[0].StockGrams)
	assert.Equal(t, 12.0, *p.Teas[0].StockGrams)

	assert.Equal(t, models.ID(0), p.Teas[1].ID)
	assert.True(t, p.Teas[1].InStock)
	assert.False(t, p.Teas[1].IsWishlist)

	assert.Nil(t, p.Shops)
}

func TestExportImportRoundTrip(t *testing.T) {
	shops := []models.Shop{{ID: 1, Name: "Twinings", Variations: []string{"twinings"}, URLPatterns: []string{"twinings"}, Website: "https://www.twinings.co.uk"}}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewPayload(sampleTeas(), shops, now)))
	assert.Contains(t, buf.String(), `"version": "1.0"`)
	assert.Contains(t, buf.String(), `"exportDate": "2026-03-01T10:00:00Z"`)
	assert.Contains(t, buf.String(), `"imageUrl"`)

	p, err := Read(&buf)
	require.NoError(t, err)

	target := &memTarget{}
	res, err := Apply(context.Background(), target, p, nil)
	require.NoError(t, err)

	assert.Equal(t, sampleTeas(), target.teas)
	assert.Equal(t, shops, target.shops)
	assert.Equal(t, Result{Teas: 2, Shops: 1, ShopsReplaced: true}, res)
}

func TestApplyKeepsShopsWhenPayloadHasNone(t *testing.T) {
	existing := []models.Shop{{ID: 1, Name: "Kusmi Tea"}}
	target := &memTarget{shops: existing}

	p, err := Decode([]byte(`{"teas": [{"name": "Assam"}], "shops": []}`))
	require.NoError(t, err)

	res, err := Apply(context.Background(), target, p, nil)
	require.NoError(t, err)
	assert.False(t, res.ShopsReplaced)
	assert.Equal(t, existing, target.shops)
	assert.Len(t, target.teas, 1)
}

func TestApplyConfirmation(t *testing.T) {
	target := &memTarget{teas: sampleTeas()}
	p, err := Decode([]byte(`{"teas": [{"name": "Assam"}]}`))
	require.NoError(t, err)

	var gotIncoming, gotCurrent int
	_, err = Apply(context.Background(), target, p, func(incoming, current int) bool {
		gotIncoming, gotCurrent = incoming, current
		return false
	})
	assert.True(t, errors.Is(err, ErrDeclined))
	assert.Equal(t, 1, gotIncoming)
	assert.Equal(t, 2, gotCurrent)
	assert.False(t, target.replaced)
	assert.Len(t, target.teas, 2)

	_, err = Apply(context.Background(), target, p, func(int, int) bool { return true })
	require.NoError(t, err)
	assert.Len(t, target.teas, 1)
}

func TestForSync(t *testing.T) {
	remoteTeas := []models.Tea{
		{Name: "Dragon Well", Brand: "Golden Dragon Tea Co.", Type: "Green"},
		{Name: "Earl Grey Supreme", Brand: "Twinings", Type: "Black", URL: "https://www.twinings.co.uk/earl-grey"},
	}
	remoteShops := []models.Shop{{Name: "Twinings", Website: "https://www.twinings.co.uk"}}

	t.Run("nothing new", func(t *testing.T) {
		local := []models.Tea{
			{Name: "  dragon well ", Brand: "GOLDEN DRAGON TEA CO.", Type: "green", Description: "different"},
			{Name: "Earl Grey Supreme", Brand: "twinings", Type: "Black", URL: "HTTPS://WWW.TWININGS.CO.UK/EARL-GREY "},
		}
		teas, shops := ForSync(local, []models.Shop{{Name: "twinings ", Website: "https://www.twinings.co.uk"}}, remoteTeas, remoteShops)
		assert.Empty(t, teas)
		assert.Empty(t, shops)
	})

	t.Run("new rows queued once", func(t *testing.T) {
		local := []models.Tea{
			{Name: "Dragon Well", Brand: "Golden Dragon Tea Co.", Type: "Green", URL: "https://other"},
			{Name: "Assam", Type: "Black"},
			{Name: "assam", Type: "black"},
		}
		localShops := []models.Shop{{Name: "Twinings"}, {Name: "Kusmi Tea", Website: "https://www.kusmitea.com"}}

		teas, shops := ForSync(local, localShops, remoteTeas, remoteShops)
		require.Len(t, teas, 2)
		assert.Equal(t, "https://other", teas[0].URL)
		assert.Equal(t, "Assam", teas[1].Name)
		require.Len(t, shops, 2)
		assert.Equal(t, "Twinings", shops[0].Name)
	})
}

func TestDropNameless(t *testing.T) {
	teas, shops := DropNameless(
		[]models.Tea{{Name: "Assam"}, {Name: "  "}},
		[]models.Shop{{Name: ""}, {Name: "Twinings"}},
	)
	assert.Len(t, teas, 1)
	require.Len(t, shops, 1)
	assert.True(t, strings.EqualFold("twinings", shops[0].Name))
}
