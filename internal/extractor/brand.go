package extractor

import (
	"strings"
	"unicode/utf8"
)

var brandSelectors = []string{
	".brand",
	".product-brand",
	".tea-brand",
	".manufacturer",
	"[data-brand]",
	`[itemprop="brand"]`,
}

// brand returns the shop name and whether it is a directory entry. A raw
// guess (a hostname segment or a page label) is returned as-is with false
// so the caller can offer to add it to the directory.
func (e *Extractor) brand(p *page, full string) (string, bool) {
	guess := e.brandFromURL(p)
	if guess == "" {
		guess = e.brandFromPage(p, full)
	}
	if guess == "" {
		return "", false
	}
	if shop, ok := e.shops.Find(guess); ok {
		return shop.Name, true
	}
	e.log.Debug().Str("brand", guess).Msg("brand not in shop directory")
	return guess, false
}

func (e *Extractor) brandFromURL(p *page) string {
	if p.src == nil {
		return ""
	}
	domain := strings.TrimPrefix(strings.ToLower(p.src.Hostname()), "www.")
	if shop, ok := e.shops.Find(domain); ok {
		return shop.Name
	}

	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return ""
	}
	name := parts[len(parts)-2]
	if shop, ok := e.shops.Find(name); ok {
		return shop.Name
	}
	return name
}

func (e *Extractor) brandFromPage(p *page, full string) string {
	meta := p.doc.Find(`meta[property="product:brand"], meta[name="brand"], [itemprop="brand"]`).First()
	if b := nodeText(meta); b != "" {
		return b
	}

	for _, sel := range brandSelectors {
		el := p.doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		b := strings.TrimSpace(el.Text())
		if b == "" {
			b, _ = el.Attr("data-brand")
			b = strings.TrimSpace(b)
		}
		if b != "" && utf8.RuneCountInString(b) < 50 {
			return b
		}
	}

	for _, shop := range e.shops.List() {
		for _, v := range shop.Variations {
			if v != "" && strings.Contains(full, strings.ToLower(v)) {
				return shop.Name
			}
		}
	}
	return ""
}
