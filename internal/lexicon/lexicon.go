// Package lexicon holds the static reference tables used for matching:
// origin spellings, tea category keywords, title prefixes and the seed
// shop directory. The tables are embedded YAML parsed once.
package lexicon

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mspro-labs/tea-buddy/internal/models"
)

//go:embed lexicon.yaml
var defaultYAML []byte

type Origin struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type seedShop struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Variations  []string `yaml:"variations"`
	URLPatterns []string `yaml:"url_patterns"`
	Website     string   `yaml:"website"`
}

type file struct {
	Origins       []Origin   `yaml:"origins"`
	Categories    []Category `yaml:"categories"`
	TitlePrefixes []string   `yaml:"title_prefixes"`
	TeaTypes      []string   `yaml:"tea_types"`
	Methods       []string   `yaml:"methods"`
	Shops         []seedShop `yaml:"shops"`
}

// Lexicon is the parsed, read-only form of the tables.
type Lexicon struct {
	Origins       []Origin
	Categories    []Category
	TitlePrefixes []*regexp.Regexp
	TeaTypes      []string
	Methods       []string

	originIndex map[string]string
	seedShops   []models.Shop
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the embedded tables. It panics if the embedded file is
// malformed, which can only happen at build time.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded tables: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// Parse builds a Lexicon from YAML.
func Parse(data []byte) (*Lexicon, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	lex := &Lexicon{
		Origins:     f.Origins,
		Categories:  f.Categories,
		TeaTypes:    f.TeaTypes,
		Methods:     f.Methods,
		originIndex: make(map[string]string),
	}

	for _, o := range f.Origins {
		if o.Name == "" {
			return nil, fmt.Errorf("origin entry without a name")
		}
		for _, v := range o.Variants {
			lex.originIndex[strings.ToLower(strings.TrimSpace(v))] = o.Name
		}
	}

	for _, p := range f.TitlePrefixes {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("title prefix %q: %w", p, err)
		}
		lex.TitlePrefixes = append(lex.TitlePrefixes, re)
	}

	for _, s := range f.Shops {
		if s.Name == "" {
			return nil, fmt.Errorf("seed shop %d has no name", s.ID)
		}
		lex.seedShops = append(lex.seedShops, models.Shop{
			ID:          models.ID(s.ID),
			Name:        s.Name,
			Variations:  s.Variations,
			URLPatterns: s.URLPatterns,
			Website:     s.Website,
		})
	}

	return lex, nil
}

// CanonicalOrigin looks up an already trimmed and lowercased spelling.
func (l *Lexicon) CanonicalOrigin(variant string) (string, bool) {
	name, ok := l.originIndex[variant]
	return name, ok
}

// SeedShops returns a fresh copy of the first-run shop directory.
func (l *Lexicon) SeedShops() []models.Shop {
	out := make([]models.Shop, len(l.seedShops))
	for i, s := range l.seedShops {
		s.Variations = append([]string(nil), s.Variations...)
		s.URLPatterns = append([]string(nil), s.URLPatterns...)
		out[i] = s
	}
	return out
}

// IsTeaType reports whether t is one of the known tea types.
func (l *Lexicon) IsTeaType(t string) bool {
	for _, known := range l.TeaTypes {
		if known == t {
			return true
		}
	}
	return false
}
