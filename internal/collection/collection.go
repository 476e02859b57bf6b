// Package collection holds the queries the list views and the API run over
// the stored teas.
package collection

import (
	"sort"
	"strings"

	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/normalize"
	"mspro-labs/tea-buddy/internal/temperature"
)

// AllTypes matches every tea type.
const AllTypes = "All"

// Query selects teas. Wishlist switches from the owned collection to the
// wishlist.
type Query struct {
	Type           string
	Search         string
	ShowOutOfStock bool
	Wishlist       bool
}

// Filter returns the teas matching q in their original order.
func Filter(teas []models.Tea, q Query) []models.Tea {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []models.Tea{}
	for _, t := range teas {
		if t.IsWishlist != q.Wishlist {
			continue
		}
		if q.Type != "" && q.Type != AllTypes && t.Type != q.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Brand), search) {
			continue
		}
		if !q.ShowOutOfStock && !t.InStock {
			continue
		}
		out = append(out, t)
	}
	return out
}

// OriginCount is the number of teas from one canonical origin.
type OriginCount struct {
	Origin string `json:"origin"`
	Count  int    `json:"count"`
}

// OriginCounts groups teas by canonical origin, most common first. Teas
// without an origin are left out.
func OriginCounts(teas []models.Tea) []OriginCount {
	counts := make(map[string]int)
	for _, t := range teas {
		if o := normalize.Origin(t.Origin); o != "" {
			counts[o]++
		}
	}

	out := make([]OriginCount, 0, len(counts))
	for o, n := range counts {
		out = append(out, OriginCount{Origin: o, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Origin < out[j].Origin
	})
	return out
}

// Form defaults for a new tea.
const (
	DefaultType   = "Green"
	DefaultMethod = "Gongfu"
)

// ApplyDefaults prepares a tea entered through the form: empty type and
// method get their defaults, the origin is canonicalized and the
// temperature snapped to a preset.
func ApplyDefaults(t models.Tea) models.Tea {
	t.Name = strings.TrimSpace(t.Name)
	if t.Type == "" {
		t.Type = DefaultType
	}
	if t.Method == "" {
		t.Method = DefaultMethod
	}
	return Canonicalize(t)
}

// Canonicalize maps the origin to its canonical name and snaps the
// temperature to a preset. Every write path runs it before storing.
func Canonicalize(t models.Tea) models.Tea {
	t.Origin = normalize.Origin(t.Origin)
	if t.Temperature == "" {
		t.Temperature = temperature.Default
	} else if !temperature.IsPreset(t.Temperature) {
		t.Temperature = temperature.ToPreset(t.Temperature)
	}
	return t
}
