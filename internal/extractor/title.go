package extractor

import (
	"regexp"
	"strings"
)

var titleSelectors = []string{
	"h1.product-title",
	"h1.product__title",
	"h1.product-name",
	".product-title h1",
	".product__title",
	"[data-product-title]",
	".ProductMeta__Title",
	".product-single__title",
	`h1[class*="product"]`,
	`h1[class*="Product"]`,
}

var titleStrategies = func() []strategy {
	s := []strategy{
		metaContent(`meta[property="og:title"]`),
		metaContent(`meta[name="twitter:title"], meta[property="twitter:title"]`),
		firstText(`[itemprop="name"]`),
	}
	s = append(s, selectorTexts(titleSelectors)...)
	s = append(s,
		strategy{name: "h1", run: firstHeading},
		firstText("title"),
	)
	return s
}()

// firstHeading skips navigation chrome that some themes render as the
// first h1.
func firstHeading(p *page) string {
	t := nodeText(p.doc.Find("h1").First())
	lower := strings.ToLower(t)
	if strings.Contains(lower, "menu") || strings.Contains(lower, "navigation") {
		return ""
	}
	return t
}

func (e *Extractor) title(p *page) string {
	raw, from := firstOf(p, titleStrategies, longerThan(3))
	if raw == "" {
		return ""
	}
	clean := cleanTitle(raw, e.lex.TitlePrefixes)
	e.log.Debug().Str("strategy", from).Str("raw", raw).Str("title", clean).Msg("title")
	return clean
}

var reLeadingSeparator = regexp.MustCompile(`^[-:]\s*`)

// cleanTitle drops the store-name suffix, then at most one leading
// category word, then any separator left at the start.
func cleanTitle(raw string, prefixes []*regexp.Regexp) string {
	t := strings.TrimSpace(raw)

	switch {
	case strings.Contains(t, "–"):
		t = strings.TrimSpace(strings.SplitN(t, "–", 2)[0])
	case strings.Contains(t, "|"):
		t = strings.TrimSpace(strings.SplitN(t, "|", 2)[0])
	default:
		// "OOLONG TEA - Milky" keeps its inner dash; only a third segment
		// is taken to be the shop name.
		parts := strings.Split(t, " - ")
		if len(parts) > 2 {
			t = strings.TrimSpace(strings.Join(parts[:len(parts)-1], " - "))
		}
	}

	for _, re := range prefixes {
		if re.MatchString(t) {
			t = strings.TrimSpace(re.ReplaceAllString(t, ""))
			break
		}
	}

	return strings.TrimSpace(reLeadingSeparator.ReplaceAllString(t, ""))
}
