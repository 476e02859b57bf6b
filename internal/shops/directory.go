// Package shops keeps the ordered directory of known tea shops and resolves
// arbitrary names or hostnames against it.
package shops

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/normalize"
)

var ErrNotFound = errors.New("shop not found")

// Directory is safe for concurrent use. Persisting it is the caller's job:
// after a mutation, save List() wherever the collection lives.
type Directory struct {
	mu    sync.RWMutex
	shops []models.Shop
}

// NewDirectory builds a directory holding a copy of shops, in order.
func NewDirectory(shops []models.Shop) *Directory {
	d := &Directory{}
	d.shops = cloneAll(shops)
	return d
}

// List returns a copy of the shops in directory order.
func (d *Directory) List() []models.Shop {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneAll(d.shops)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.shops)
}

// Get returns the shop with the given id.
func (d *Directory) Get(id models.ID) (models.Shop, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.shops {
		if s.ID == id {
			return clone(s), true
		}
	}
	return models.Shop{}, false
}

// Find resolves a bare name or a URL/hostname fragment to a shop. For each
// shop in order it checks, in turn: a variation with the same key, a URL
// pattern whose key is contained in the input key, then the shop name's
// key. The first shop that satisfies any rule wins.
func (d *Directory) Find(text string) (models.Shop, bool) {
	key := normalize.Key(text)
	if key == "" {
		return models.Shop{}, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, s := range d.shops {
		if matches(s, key) {
			return clone(s), true
		}
	}
	return models.Shop{}, false
}

func matches(s models.Shop, key string) bool {
	for _, v := range s.Variations {
		if normalize.Key(v) == key {
			return true
		}
	}
	for _, p := range s.URLPatterns {
		if pk := normalize.Key(p); pk != "" && strings.Contains(key, pk) {
			return true
		}
	}
	return normalize.Key(s.Name) == key
}

// Add appends a shop and assigns it an id one greater than the current
// maximum, or 1 for an empty directory. Ids of deleted shops can come back.
func (d *Directory) Add(s models.Shop) (models.Shop, error) {
	if err := validate(s); err != nil {
		return models.Shop{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var maxID models.ID
	for _, existing := range d.shops {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	s = clone(s)
	s.ID = maxID + 1
	d.shops = append(d.shops, s)
	return clone(s), nil
}

// Update replaces the shop with the given id, keeping its id and position.
func (d *Directory) Update(id models.ID, s models.Shop) (models.Shop, error) {
	if err := validate(s); err != nil {
		return models.Shop{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.shops {
		if d.shops[i].ID == id {
			s = clone(s)
			s.ID = id
			d.shops[i] = s
			return clone(s), nil
		}
	}
	return models.Shop{}, fmt.Errorf("update shop %d: %w", id, ErrNotFound)
}

// Delete removes the shop with the given id.
func (d *Directory) Delete(id models.ID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.shops {
		if d.shops[i].ID == id {
			d.shops = append(d.shops[:i], d.shops[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete shop %d: %w", id, ErrNotFound)
}

// Replace swaps the whole directory, as an import does.
func (d *Directory) Replace(shops []models.Shop) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shops = cloneAll(shops)
}

func validate(s models.Shop) error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("shop name is required")
	}
	return nil
}

func clone(s models.Shop) models.Shop {
	s.Variations = append([]string(nil), s.Variations...)
	s.URLPatterns = append([]string(nil), s.URLPatterns...)
	return s
}

func cloneAll(shops []models.Shop) []models.Shop {
	out := make([]models.Shop, len(shops))
	for i, s := range shops {
		out[i] = clone(s)
	}
	return out
}
