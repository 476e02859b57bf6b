package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	lex := Default()

	assert.Len(t, lex.Origins, 10)
	assert.Len(t, lex.TitlePrefixes, 25)
	assert.Equal(t, []string{"Oolong", "Black", "Green", "White", "Herbal"}, lex.TeaTypes)

	var names []string
	for _, c := range lex.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Oolong", "Black", "Green", "White", "Herbal"}, names)

	name, ok := lex.CanonicalOrigin("sri lanka")
	assert.True(t, ok)
	assert.Equal(t, "Sri Lanka", name)

	name, ok = lex.CanonicalOrigin("taïwan")
	assert.True(t, ok)
	assert.Equal(t, "Taiwan", name)

	_, ok = lex.CanonicalOrigin("freedonia")
	assert.False(t, ok)
}

func TestSeedShopsAreCopies(t *testing.T) {
	lex := Default()

	first := lex.SeedShops()
	require.Len(t, first, 7)
	assert.Equal(t, "Le Parti du Thé", first[0].Name)
	assert.Equal(t, "Fortnum & Mason", first[6].Name)

	first[0].Name = "changed"
	first[0].Variations[0] = "changed"

	second := lex.SeedShops()
	assert.Equal(t, "Le Parti du Thé", second[0].Name)
	assert.Equal(t, "lepartiduthe", second[0].Variations[0])
}

func TestParseRejectsBadPrefix(t *testing.T) {
	_, err := Parse([]byte("title_prefixes: ['^(oolong']\n"))
	assert.Error(t, err)
}

func TestTitlePrefixesAreCaseInsensitive(t *testing.T) {
	lex := Default()
	assert.True(t, lex.TitlePrefixes[0].MatchString("OOLONG TEA - Milky"))
	assert.True(t, lex.TitlePrefixes[8].MatchString("Thé Noir Assam"))
}
