package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a numeric record identifier. Exports written by other clients
// sometimes carry it as a string, so decoding accepts both forms.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			// Opaque ids ("local-abc123") are left for the store to reassign.
			*id = 0
			return nil
		}
		*id = ID(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(v)
	return nil
}

// Tea is a single entry of the collection or the wishlist.
type Tea struct {
	ID          ID       `json:"id,omitempty"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Brand       string   `json:"brand"`
	Origin      string   `json:"origin,omitempty"`
	Temperature string   `json:"temperature"`
	Time        string   `json:"time"`
	Method      string   `json:"method"`
	Quantity    string   `json:"quantity,omitempty"`
	Infusions   string   `json:"infusions,omitempty"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	InStock     bool     `json:"inStock"`
	IsWishlist  bool     `json:"isWishlist"`
	StockGrams  *float64 `json:"stockGrams,omitempty"`
	Rating      int      `json:"rating,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts both the camelCase export spelling and the
// snake_case spelling used by the remote database, and applies the
// inStock=true / isWishlist=false defaults when the flags are absent.
func (t *Tea) UnmarshalJSON(data []byte) error {
	type plain Tea
	aux := struct {
		*plain
		InStock         *bool    `json:"inStock"`
		IsWishlist      *bool    `json:"isWishlist"`
		ImageURLSnake   *string  `json:"image_url"`
		InStockSnake    *bool    `json:"in_stock"`
		IsWishlistSnake *bool    `json:"is_wishlist"`
		StockGramsSnake *float64 `json:"stock_grams"`
		CreatedAtSnake  *string  `json:"created_at"`
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.InStock = firstBool(true, aux.InStock, aux.InStockSnake)
	t.IsWishlist = firstBool(false, aux.IsWishlist, aux.IsWishlistSnake)
	if t.ImageURL == "" && aux.ImageURLSnake != nil {
		t.ImageURL = *aux.ImageURLSnake
	}
	if t.StockGrams == nil {
		t.StockGrams = aux.StockGramsSnake
	}
	if t.CreatedAt == "" && aux.CreatedAtSnake != nil {
		t.CreatedAt = *aux.CreatedAtSnake
	}
	return nil
}

func firstBool(def bool, candidates ...*bool) bool {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return def
}

// StockLabel buckets the remaining grams the way the collection view shows them.
// An unknown quantity returns "".
func (t Tea) StockLabel() string {
	if t.StockGrams == nil {
		return ""
	}
	switch g := *t.StockGrams; {
	case g <= 25:
		return "Very low"
	case g <= 50:
		return "Low"
	case g <= 100:
		return "Medium"
	default:
		return "Plenty"
	}
}

// Shop is an entry of the shop directory.
type Shop struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Variations  []string `json:"variations"`
	URLPatterns []string `json:"urlPatterns"`
	Website     string   `json:"website,omitempty"`
}

func (s *Shop) UnmarshalJSON(data []byte) error {
	type plain Shop
	aux := struct {
		*plain
		URLPatternsSnake []string `json:"url_patterns"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(s.URLPatterns) == 0 {
		s.URLPatterns = aux.URLPatternsSnake
	}
	return nil
}

// Extraction holds the fields recovered from one product page. Every field
// is optional; an empty string means the field was not found.
type Extraction struct {
	Title        string `json:"title,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	Temperature  string `json:"temperature,omitempty"`
	InfusionTime string `json:"infusionTime,omitempty"`
	DetectedType string `json:"detectedType,omitempty"`

	// BrandInDirectory is false when Brand is a raw guess that no
	// directory shop resolved.
	BrandInDirectory bool `json:"brandInDirectory"`
}

// Found lists the names of the fields that were extracted, in display order.
func (e Extraction) Found() []string {
	var found []string
	add := func(name, value string) {
		if value != "" {
			found = append(found, name)
		}
	}
	add("name", e.Title)
	add("brand", e.Brand)
	add("temperature", e.Temperature)
	add("time", e.InfusionTime)
	add("description", e.Description)
	add("image", e.ImageURL)
	add("type", e.DetectedType)
	return found
}
