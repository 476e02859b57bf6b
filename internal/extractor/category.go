package extractor

import "strings"

// category returns the first lexicon category with a keyword in text.
// Categories are checked in lexicon order, which settles titles that
// mention two families.
func (e *Extractor) category(text string) string {
	lower := strings.ToLower(text)
	for _, c := range e.lex.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Name
			}
		}
	}
	return ""
}
