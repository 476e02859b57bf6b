// Package normalize turns free-text shop names and origin spellings into
// comparable keys and display forms.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mspro-labs/tea-buddy/internal/lexicon"
)

// Key lowercases text, decomposes it, drops combining marks and keeps only
// ASCII letters and digits. "Palais des Thés" and "palais-des-thes" share
// the key "palaisdesthes". Empty input, or input with no letters or
// digits, yields "".
func Key(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)

	// transform chains carry state, build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Origin maps a country spelling to its canonical English name using the
// default lexicon.
func Origin(text string) string {
	return OriginWith(lexicon.Default(), text)
}

// OriginWith maps text through lex's origin table. Lookup is on the trimmed,
// lowercased input, so accents and inner spaces matter ("sri lanka").
// Unknown spellings come back trimmed with the first letter uppercased.
func OriginWith(lex *lexicon.Lexicon, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if name, ok := lex.CanonicalOrigin(strings.ToLower(trimmed)); ok {
		return name
	}
	return Capitalize(trimmed)
}

// Capitalize uppercases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
