package extractor

const maxDescriptionRunes = 500

var descriptionSelectors = []string{
	".product-description",
	".product__description",
	".product-single__description",
	"[data-product-description]",
	".ProductMeta__Description",
	".description",
	".product-details",
	".rte",
}

var descriptionStrategies = func() []strategy {
	s := []strategy{
		metaContent(`meta[name="description"]`),
		metaContent(`meta[property="og:description"]`),
		firstText(`[itemprop="description"]`),
	}
	for _, sel := range selectorTexts(descriptionSelectors) {
		run := sel.run
		s = append(s, strategy{
			name: sel.name,
			run: func(p *page) string {
				return truncateRunes(run(p), maxDescriptionRunes)
			},
		})
	}
	return s
}()

func (e *Extractor) description(p *page) string {
	d, from := firstOf(p, descriptionStrategies, longerThan(20))
	if d != "" {
		e.log.Debug().Str("strategy", from).Msg("description")
	}
	return d
}
