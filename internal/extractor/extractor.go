// Package extractor pulls tea details out of a third-party product page:
// title, brand, description, image, brewing temperature, steep time and
// tea type. Every field is best effort; a field that cannot be found is
// left empty and never fails the extraction.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"mspro-labs/tea-buddy/internal/lexicon"
	"mspro-labs/tea-buddy/internal/models"
)

// Directory is the part of the shop directory the extractor consults.
type Directory interface {
	Find(text string) (models.Shop, bool)
	List() []models.Shop
}

// Extractor holds no per-page state and can be shared between goroutines.
type Extractor struct {
	shops Directory
	lex   *lexicon.Lexicon
	log   zerolog.Logger
}

type Option func(*Extractor)

// WithLexicon overrides the embedded reference tables.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(e *Extractor) { e.lex = lex }
}

// WithLogger sets the logger used for strategy tracing at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

func New(shops Directory, opts ...Option) *Extractor {
	e := &Extractor{
		shops: shops,
		lex:   lexicon.Default(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// page is the per-call view over one parsed document.
type page struct {
	doc *goquery.Document
	src *url.URL // nil when the source URL does not parse
}

// ExtractHTML parses raw HTML and runs Extract on it.
func (e *Extractor) ExtractHTML(html, sourceURL string) (models.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Extraction{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return e.Extract(doc, sourceURL), nil
}

// Extract runs every stage against doc. sourceURL is the product page
// address; it drives brand detection and resolves relative image links.
func (e *Extractor) Extract(doc *goquery.Document, sourceURL string) models.Extraction {
	p := &page{doc: doc}
	if u, err := url.Parse(strings.TrimSpace(sourceURL)); err == nil && u.Host != "" {
		p.src = u
	}

	var ex models.Extraction
	ex.Title = e.title(p)
	ex.Description = e.description(p)

	full := fullText(p, ex.Title, ex.Description)
	ex.Brand, ex.BrandInDirectory = e.brand(p, full)
	ex.ImageURL = e.image(p, ex.Title)
	ex.Temperature = temperatureRule.extract(full, doc)
	ex.InfusionTime = timeRule.extract(full, doc)
	ex.DetectedType = e.category(ex.Title + " " + ex.Description)

	e.log.Debug().
		Str("url", sourceURL).
		Strs("found", ex.Found()).
		Msg("extraction finished")
	return ex
}

// fullText is the lowercased haystack for text scans: title, description
// and the whole body text. Non-breaking spaces count as spaces.
func fullText(p *page, title, description string) string {
	body := p.doc.Find("body").Text()
	joined := title + " " + description + " " + body
	joined = strings.ReplaceAll(joined, "\u00a0", " ")
	return strings.ToLower(joined)
}
