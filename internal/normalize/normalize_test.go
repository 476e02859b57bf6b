package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Palais des Thés", "palaisdesthes"},
		{"palais-des-thes", "palaisdesthes"},
		{"PALAIS DES THES!", "palaisdesthes"},
		{"www.palaisdesthes.com", "wwwpalaisdesthescom"},
		{"Mariage Frères", "mariagefreres"},
		{"Fortnum & Mason", "fortnummason"},
		{"Thé n°42", "then42"},
		{"Ñandú", "nandu"},
		{"", ""},
		{"---", ""},
		{"茶", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeyIgnoresCaseAccentsAndPunctuation(t *testing.T) {
	variants := []string{"Le Parti du Thé", "le-parti-du-the", "LE_PARTI_DU_THE", "le parti du the."}
	want := Key(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, Key(v), v)
	}
}

func TestOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chine", "China"},
		{"  chinoise ", "China"},
		{"taïwan", "Taiwan"},
		{"ceylan", "Sri Lanka"},
		{"Sri Lanka", "Sri Lanka"},
		{"viêt nam", "Vietnam"},
		{"Corée", "Korea"},
		{"Freedonia", "Freedonia"},
		{"darjeeling", "Darjeeling"},
		{"  yunnan  ", "Yunnan"},
		{"éthiopie", "Éthiopie"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Origin(tt.in))
		})
	}
}
