package extractor

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/tea-buddy/internal/normalize"
)

// minImageSide excludes icons and badges declared smaller than this.
const minImageSide = 100

// image picks the product picture: og:image when present, then the first
// JSON-LD image, then the best scoring <img>. The result is absolute.
func (e *Extractor) image(p *page, title string) string {
	if p.src == nil {
		return ""
	}

	if og, _ := p.doc.Find(`meta[property="og:image"]`).First().Attr("content"); strings.TrimSpace(og) != "" {
		e.log.Debug().Str("strategy", "og:image").Msg("image")
		return absoluteURL(strings.TrimSpace(og), p.src)
	}

	if ld := jsonLDImage(p.doc); ld != "" {
		e.log.Debug().Str("strategy", "json-ld").Msg("image")
		return absoluteURL(ld, p.src)
	}

	slug := normalize.Key(lastPathSegment(p.src.Path))
	normTitle := normalize.Key(title)

	var best string
	bestScore := 0
	p.doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if src == "" || strings.HasPrefix(src, "data:") || tooSmall(img) {
			return
		}
		// Only a strictly higher score replaces the current pick, so the
		// first image wins a tie.
		if score := scoreImage(img, src, slug, normTitle); score > bestScore {
			best, bestScore = src, score
		}
	})
	if best == "" {
		return ""
	}
	e.log.Debug().Str("strategy", "scoring").Int("score", bestScore).Msg("image")
	return absoluteURL(best, p.src)
}

func scoreImage(img *goquery.Selection, src, slug, title string) int {
	class := strings.ToLower(img.AttrOr("class", ""))
	id := strings.ToLower(img.AttrOr("id", ""))
	alt := normalize.Key(img.AttrOr("alt", ""))
	lowerSrc := strings.ToLower(src)

	score := 0
	if containsAny(class, "product", "tea", "main") {
		score += 30
	}
	if containsAny(id, "product", "tea", "main") {
		score += 30
	}
	if slug != "" && strings.Contains(normalize.Key(src), slug) {
		score += 50
	}
	if len(title) > 2 && strings.Contains(alt, title) {
		score += 40
	}
	if len(slug) > 2 && strings.Contains(alt, slug) {
		score += 35
	}
	if img.AttrOr("itemprop", "") == "image" {
		score += 40
	}
	if containsAny(class, "featured", "hero", "main-image") {
		score += 25
	}
	if containsAny(lowerSrc, "product", "tea") {
		score += 20
	}

	if containsAny(lowerSrc, "logo", "icon", "avatar", "thumb") {
		score -= 30
	}
	if strings.Contains(class, "thumbnail") && !strings.Contains(class, "product") {
		score -= 10
	}
	return score
}

// imageSource follows lazy-loading attributes before plain src.
func imageSource(img *goquery.Selection) string {
	for _, attr := range []string{"data-src", "data-lazy-src", "data-original", "src"} {
		if v := img.AttrOr(attr, ""); v != "" {
			return strings.TrimSpace(v)
		}
	}
	for _, attr := range []string{"data-srcset", "srcset"} {
		if v := firstSrcsetURL(img.AttrOr(attr, "")); v != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstSrcsetURL(srcset string) string {
	first := strings.SplitN(srcset, ",", 2)[0]
	return strings.SplitN(first, " ", 2)[0]
}

func tooSmall(img *goquery.Selection) bool {
	w := leadingInt(img.AttrOr("width", ""))
	h := leadingInt(img.AttrOr("height", ""))
	return (w > 0 && w < minImageSide) || (h > 0 && h < minImageSide)
}

// leadingInt reads the digits at the start of s ("300px" is 300). Anything
// unparseable is 0, which never excludes an image.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func lastPathSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// jsonLDImage reads the image property of the first JSON-LD block that has
// one: a string, the first element of an array, or an object's url.
func jsonLDImage(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		found = imageValue(data["image"])
		return found == ""
	})
	return found
}

func imageValue(v any) string {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}

// absoluteURL resolves protocol-relative, root-relative and bare relative
// links against the page origin.
func absoluteURL(raw string, page *url.URL) string {
	origin := page.Scheme + "://" + page.Host
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return origin + raw
	case strings.HasPrefix(raw, "http"):
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	base := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/"}
	return base.ResolveReference(ref).String()
}
