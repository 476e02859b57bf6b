package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/tea-buddy/internal/lexicon"
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/shops"
)

func newExtractor() *Extractor {
	return New(shops.NewDirectory(lexicon.Default().SeedShops()))
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const productPage = `
<html>
<head>
  <title>Milky Oolong | Le Parti du Thé</title>
  <meta property="og:title" content="OOLONG TEA - Milky Oolong - Le Parti du Thé">
  <meta name="description" content="A creamy Taiwanese oolong with buttery notes and a long finish.">
</head>
<body>
  <nav><h1>Menu</h1></nav>
  <div class="product-details">
    <p>Brewing: 85-90°C for 3-4 minutes.</p>
  </div>
  <img src="/static/logo.png" class="site-logo" alt="Le Parti du Thé">
  <img src="/cdn/products/milky-oolong-1.jpg" class="product-image" alt="Milky Oolong" width="600">
  <img src="/cdn/products/milky-oolong-thumb.jpg" class="thumbnail" width="80">
</body>
</html>`

func TestExtractProductPage(t *testing.T) {
	ex := newExtractor().Extract(mustDoc(t, productPage), "https://www.lepartiduthe.com/fr/the/milky-oolong")

	assert.Equal(t, "Milky Oolong", ex.Title)
	assert.Equal(t, "Le Parti du Thé", ex.Brand)
	assert.True(t, ex.BrandInDirectory)
	assert.Equal(t, "A creamy Taiwanese oolong with buttery notes and a long finish.", ex.Description)
	assert.Equal(t, "https://www.lepartiduthe.com/cdn/products/milky-oolong-1.jpg", ex.ImageURL)
	assert.Equal(t, "85-90°C", ex.Temperature)
	assert.Equal(t, "3-4 min", ex.InfusionTime)
	assert.Equal(t, "Oolong", ex.DetectedType)
	assert.Equal(t, []string{"name", "brand", "temperature", "time", "description", "image", "type"}, ex.Found())
}

func TestExtractSuffixSplitBeforeCategoryStrip(t *testing.T) {
	html := `<html><head><meta property="og:title" content="Dragon Well Green Tea – TeaShop"></head><body></body></html>`

	ex := newExtractor().Extract(mustDoc(t, html), "https://teashop.example/products/dragon-well")

	assert.Equal(t, "Dragon Well Green Tea", ex.Title)
	assert.Equal(t, "teashop", ex.Brand)
	assert.False(t, ex.BrandInDirectory)
	assert.Equal(t, "Green", ex.DetectedType)
	assert.Empty(t, ex.Temperature)
	assert.Empty(t, ex.InfusionTime)
	assert.Empty(t, ex.Description)
}

func TestExtractEmptyPageIsSoftMiss(t *testing.T) {
	ex := newExtractor().Extract(mustDoc(t, "<html><body></body></html>"), "not a url")
	assert.Equal(t, models.Extraction{}, ex)
	assert.Empty(t, ex.Found())
}

func TestExtractHTML(t *testing.T) {
	ex, err := newExtractor().ExtractHTML(productPage, "https://www.lepartiduthe.com/fr/the/milky-oolong")
	require.NoError(t, err)
	assert.Equal(t, "Milky Oolong", ex.Title)
}

func TestTitleFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"navigation heading skipped for title tag",
			`<html><head><title>Sencha Ashikubo | Shop</title></head><body><h1>Main Menu</h1></body></html>`,
			"Sencha Ashikubo",
		},
		{
			"short og title rejected",
			`<html><head><meta property="og:title" content="Tea"></head><body><h1 class="product-title">Jasmine Pearls</h1></body></html>`,
			"Jasmine Pearls",
		},
		{
			"twitter title",
			`<html><head><meta name="twitter:title" content="Gyokuro Asahi"></head><body></body></html>`,
			"Gyokuro Asahi",
		},
		{
			"microdata name",
			`<html><body><div itemscope><span itemprop="name">Bai Mu Dan</span></div></body></html>`,
			"Bai Mu Dan",
		},
		{
			"first heading",
			`<html><body><h1>Lapsang Souchong</h1></body></html>`,
			"Lapsang Souchong",
		},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(mustDoc(t, tt.html), "").Title)
		})
	}
}

func TestCleanTitle(t *testing.T) {
	prefixes := lexicon.Default().TitlePrefixes

	tests := []struct {
		in   string
		want string
	}{
		{"Dragon Well Green Tea – TeaShop", "Dragon Well Green Tea"},
		{"Green Tea - Sencha - Shop", "Sencha"},
		{"OOLONG TEA - Milky", "Milky"},
		{"Thé Vert: Gyokuro | Maison", "Gyokuro"},
		{"Black - Lapsang - Store", "Lapsang"},
		{"Tea: - Assam", "Assam"},
		{"Earl Grey", "Earl Grey"},
		{"  Rooibos Vanille  ", "Vanille"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.in, prefixes))
		})
	}
}

func TestDescriptionFallbacks(t *testing.T) {
	long := strings.Repeat("é", 600)

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"short meta skipped",
			`<html><head><meta name="description" content="Too short"><meta property="og:description" content="An aromatic first flush Darjeeling."></head></html>`,
			"An aromatic first flush Darjeeling.",
		},
		{
			"microdata",
			`<html><body><div itemprop="description">  Roasted oolong from the Wuyi mountains.  </div></body></html>`,
			"Roasted oolong from the Wuyi mountains.",
		},
		{
			"container truncated",
			`<html><body><div class="rte">` + long + `</div></body></html>`,
			strings.Repeat("é", 500),
		},
		{
			"nothing long enough",
			`<html><body><div class="description">Short</div></body></html>`,
			"",
		},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(mustDoc(t, tt.html), "").Description)
		})
	}
}

func TestBrand(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		url       string
		want      string
		inCatalog bool
	}{
		{"subdomain matches url pattern", `<html></html>`, "https://shop.twinings.co.uk/earl-grey", "Twinings", true},
		{"unknown domain raw segment", `<html></html>`, "https://www.yunnansourcing.com/products/x", "yunnansourcing", false},
		{
			"meta brand resolved",
			`<html><head><meta property="product:brand" content="mariage-freres"></head></html>`,
			"", "Mariage Frères", true,
		},
		{
			"brand class kept raw",
			`<html><body><span class="brand"> Yunnan Sourcing </span></body></html>`,
			"", "Yunnan Sourcing", false,
		},
		{
			"long brand text skipped",
			`<html><body><div class="brand">` + strings.Repeat("x", 60) + `</div><div class="manufacturer">Camellia Sinensis</div></body></html>`,
			"", "Camellia Sinensis", false,
		},
		{
			"data attribute",
			`<html><body><div data-brand="dammann-freres"></div></body></html>`,
			"", "Dammann Frères", true,
		},
		{
			"page text mentions a shop",
			`<html><body><p>Imported by Kusmi Tea in Paris</p></body></html>`,
			"", "Kusmi Tea", true,
		},
		{"nothing", `<html><body><p>Loose leaf</p></body></html>`, "", "", false},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := e.Extract(mustDoc(t, tt.html), tt.url)
			assert.Equal(t, tt.want, ex.Brand)
			assert.Equal(t, tt.inCatalog, ex.BrandInDirectory)
		})
	}
}

func TestCategory(t *testing.T) {
	e := newExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"Oriental Beauty oolong with black tea notes", "Oolong"},
		{"Thé noir de Chine", "Black"},
		{"Thé vert Sencha", "Green"},
		{"Silver Needle white tea", "White"},
		{"Rooibos chai", "Herbal"},
		{"Earl Grey", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.category(tt.text))
		})
	}
}
