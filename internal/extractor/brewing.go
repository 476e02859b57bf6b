package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rangeRule finds a one- or two-number value ("75-80°C", "3 min") in page
// text, falling back to dedicated elements. Temperature and steep time
// differ only in their patterns and formats.
type rangeRule struct {
	patterns     []*regexp.Regexp // tried in order against the page text
	number       *regexp.Regexp
	selectors    []string
	attr         string // read when the element has no text
	elemPattern  *regexp.Regexp
	singleFormat string
	rangeFormat  string
}

var temperatureRule = rangeRule{
	patterns: compileAll(
		`(\d{2,3})\s*[-–—]\s*(\d{2,3})\s*°?\s*c`,
		`(\d{2,3})\s*°?\s*c`,
		`température[:\s]+(\d{2,3})\s*[-–—]?\s*(\d{2,3})?\s*°?\s*c`,
		`temperature[:\s]+(\d{2,3})\s*[-–—]?\s*(\d{2,3})?\s*°?\s*c`,
		`brewing[:\s]+temp[^\d]*(\d{2,3})\s*[-–—]?\s*(\d{2,3})?\s*°?\s*c`,
		`infusion[:\s]+(\d{2,3})\s*[-–—]?\s*(\d{2,3})?\s*°?\s*c`,
	),
	number: regexp.MustCompile(`\d{2,3}`),
	selectors: []string{
		".temperature",
		".temp",
		".brewing-temp",
		".infusion-temp",
		"[data-temperature]",
		`[itemprop="temperature"]`,
	},
	attr:         "data-temperature",
	elemPattern:  regexp.MustCompile(`(?i)(\d{2,3})\s*[-–—]?\s*(\d{2,3})?\s*°?\s*c`),
	singleFormat: "%s°C",
	rangeFormat:  "%s-%s°C",
}

var timeRule = rangeRule{
	patterns: compileAll(
		`(\d{1,2})\s*[-–—]\s*(\d{1,2})\s*min(?:ute)?s?`,
		`(\d{1,2})\s*min(?:ute)?s?`,
		`steep(?:ing)?[:\s]+(\d{1,2})\s*[-–—]?\s*(\d{1,2})?\s*min`,
		`infusion[:\s]+(\d{1,2})\s*[-–—]?\s*(\d{1,2})?\s*min`,
		`brewing[:\s]+time[:\s]+(\d{1,2})\s*[-–—]?\s*(\d{1,2})?\s*min`,
		`(\d{1,2})\s*[-–—]\s*(\d{1,2})\s*min(?:ute)?s?\s*infusion`,
	),
	number: regexp.MustCompile(`\d{1,2}`),
	selectors: []string{
		".infusion-time",
		".steeping-time",
		".brewing-time",
		".time",
		"[data-time]",
		`[itemprop="time"]`,
		".duration",
	},
	attr:         "data-time",
	elemPattern:  regexp.MustCompile(`(?i)(\d{1,2})\s*[-–—]?\s*(\d{1,2})?\s*min`),
	singleFormat: "%s min",
	rangeFormat:  "%s-%s min",
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// extract scans text first, then the rule's elements. An empty result
// means nothing was found; no default is substituted.
func (r rangeRule) extract(text string, doc *goquery.Document) string {
	for _, re := range r.patterns {
		if v := r.format(re.FindString(text)); v != "" {
			return v
		}
	}

	for _, sel := range r.selectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		content := el.Text()
		if strings.TrimSpace(content) == "" {
			content = el.AttrOr(r.attr, "")
		}
		if v := r.format(r.elemPattern.FindString(content)); v != "" {
			return v
		}
	}
	return ""
}

// format turns a matched snippet into the display string. A match holding
// anything but one or two numbers is not usable.
func (r rangeRule) format(match string) string {
	if match == "" {
		return ""
	}
	nums := r.number.FindAllString(match, -1)
	switch len(nums) {
	case 1:
		return fmt.Sprintf(r.singleFormat, nums[0])
	case 2:
		return fmt.Sprintf(r.rangeFormat, nums[0], nums[1])
	}
	return ""
}
