package fetcher

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var errNotJSON = errors.New("response is not JSON")

// FetchImportJSON downloads an export payload. Share pages that answer with
// HTML are searched for the first link to a .json file, which is then
// fetched directly and through the proxies.
func (f *HTTPFetcher) FetchImportJSON(ctx context.Context, importURL string) ([]byte, error) {
	fe := &FetchError{URL: importURL}
	tried := make(map[string]bool)

	tryJSON := func(via, target string) ([]byte, string, bool) {
		key := via + "\x00" + target
		if tried[key] {
			return nil, "", false
		}
		tried[key] = true

		body, err := f.get(ctx, via, target)
		if err != nil {
			fe.Attempts = append(fe.Attempts, Attempt{Via: label(via), Err: err})
			return nil, "", false
		}
		trimmed := strings.TrimSpace(body)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return []byte(trimmed), body, true
		}
		return nil, body, false
	}

	for _, via := range f.routes() {
		data, body, ok := tryJSON(via, importURL)
		if ok {
			return data, nil
		}
		if body == "" {
			if ctx.Err() != nil {
				break
			}
			continue
		}

		link := jsonLink(body, importURL)
		if link == "" {
			fe.Attempts = append(fe.Attempts, Attempt{Via: label(via), Err: errNotJSON})
			continue
		}
		f.log.Debug().Str("url", importURL).Str("link", link).Msg("Following JSON link from share page")
		for _, linkVia := range f.routes() {
			if data, _, ok := tryJSON(linkVia, link); ok {
				return data, nil
			}
		}
	}
	return nil, fe
}

// jsonLink returns the absolute form of the first href mentioning .json.
func jsonLink(html, base string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".json") {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		link = baseURL.ResolveReference(ref).String()
		return false
	})
	return link
}
