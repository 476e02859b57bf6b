package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// strategy yields one candidate value from the page, or "" when it has none.
type strategy struct {
	name string
	run  func(p *page) string
}

// firstOf applies strategies in order and returns the first candidate that
// accept allows, along with the name of the strategy that produced it.
func firstOf(p *page, strategies []strategy, accept func(string) bool) (string, string) {
	for _, s := range strategies {
		v := s.run(p)
		if v != "" && accept(v) {
			return v, s.name
		}
	}
	return "", ""
}

func longerThan(n int) func(string) bool {
	return func(s string) bool { return utf8.RuneCountInString(s) > n }
}

func metaContent(selector string) strategy {
	return strategy{
		name: selector,
		run: func(p *page) string {
			v, _ := p.doc.Find(selector).First().Attr("content")
			return strings.TrimSpace(v)
		},
	}
}

func firstText(selector string) strategy {
	return strategy{
		name: selector,
		run: func(p *page) string {
			return nodeText(p.doc.Find(selector).First())
		},
	}
}

// selectorTexts checks the first element of each selector in turn.
func selectorTexts(selectors []string) []strategy {
	out := make([]strategy, len(selectors))
	for i, sel := range selectors {
		out[i] = firstText(sel)
	}
	return out
}

// nodeText prefers a content attribute (meta tags carrying microdata)
// over element text.
func nodeText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
