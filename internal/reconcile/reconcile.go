package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mspro-labs/tea-buddy/internal/models"
)

// ErrDeclined is returned when the user does not confirm an import.
var ErrDeclined = errors.New("import declined")

// Target is the store an import is applied to.
type Target interface {
	CountTeas(ctx context.Context) (int, error)
	// ReplaceCollection replaces every tea, and the shop directory when
	// shops is non-nil, in one step.
	ReplaceCollection(ctx context.Context, teas []models.Tea, shops []models.Shop) error
}

// Confirm is asked before anything is replaced, with the number of teas in
// the file and the number currently stored.
type Confirm func(incoming, current int) bool

// Result describes an applied import.
type Result struct {
	Teas          int  `json:"teas"`
	Shops         int  `json:"shops"`
	ShopsReplaced bool `json:"shopsReplaced"`
}

// Apply replaces the stored teas with p.Teas. The shop directory is
// replaced only when p carries at least one shop. A nil confirm skips the
// prompt; a confirm returning false leaves the store untouched.
func Apply(ctx context.Context, target Target, p *Payload, confirm Confirm) (Result, error) {
	if p == nil || p.Teas == nil {
		return Result{}, &FormatError{Reason: "missing teas array"}
	}

	if confirm != nil {
		current, err := target.CountTeas(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to count teas: %w", err)
		}
		if !confirm(len(p.Teas), current) {
			return Result{}, ErrDeclined
		}
	}

	var shops []models.Shop
	if len(p.Shops) > 0 {
		shops = p.Shops
	}

	if err := target.ReplaceCollection(ctx, p.Teas, shops); err != nil {
		return Result{}, fmt.Errorf("failed to apply import: %w", err)
	}

	return Result{Teas: len(p.Teas), Shops: len(shops), ShopsReplaced: shops != nil}, nil
}

// ForSync returns the local rows missing from the remote store. A tea is
// present remotely when its trimmed, case-folded (name, brand, type, url)
// matches a remote row; a shop when its (name, website) does. Other fields
// are never compared. Local rows sharing a key are queued once.
func ForSync(localTeas []models.Tea, localShops []models.Shop, remoteTeas []models.Tea, remoteShops []models.Shop) ([]models.Tea, []models.Shop) {
	seenTeas := make(map[string]bool, len(remoteTeas))
	for _, t := range remoteTeas {
		seenTeas[TeaKey(t)] = true
	}
	var teas []models.Tea
	for _, t := range localTeas {
		k := TeaKey(t)
		if seenTeas[k] {
			continue
		}
		seenTeas[k] = true
		teas = append(teas, t)
	}

	seenShops := make(map[string]bool, len(remoteShops))
	for _, s := range remoteShops {
		seenShops[ShopKey(s)] = true
	}
	var shops []models.Shop
	for _, s := range localShops {
		k := ShopKey(s)
		if seenShops[k] {
			continue
		}
		seenShops[k] = true
		shops = append(shops, s)
	}

	return teas, shops
}

// TeaKey is the identity of a tea across stores.
func TeaKey(t models.Tea) string {
	return fold(t.Name, t.Brand, t.Type, t.URL)
}

// ShopKey is the identity of a shop across stores.
func ShopKey(s models.Shop) string {
	return fold(s.Name, s.Website)
}

func fold(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "\x00")
}

// DropNameless filters out rows that cannot be stored remotely.
func DropNameless(teas []models.Tea, shops []models.Shop) ([]models.Tea, []models.Shop) {
	var keptTeas []models.Tea
	for _, t := range teas {
		if strings.TrimSpace(t.Name) != "" {
			keptTeas = append(keptTeas, t)
		}
	}
	var keptShops []models.Shop
	for _, s := range shops {
		if strings.TrimSpace(s.Name) != "" {
			keptShops = append(keptShops, s)
		}
	}
	return keptTeas, keptShops
}
