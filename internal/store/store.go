// Package store persists the collection. SQLiteStore is the local store;
// PostgresStore talks to the managed remote database.
package store

import (
	"context"
	"errors"

	"mspro-labs/tea-buddy/internal/models"
)

// ErrNotFound is returned when a tea id does not exist.
var ErrNotFound = errors.New("not found")

// Store is what the commands and the API need from a backend.
type Store interface {
	ListTeas(ctx context.Context) ([]models.Tea, error)
	GetTea(ctx context.Context, id models.ID) (models.Tea, error)
	AddTea(ctx context.Context, t models.Tea) (models.Tea, error)
	UpdateTea(ctx context.Context, t models.Tea) (models.Tea, error)
	DeleteTea(ctx context.Context, id models.ID) error
	CountTeas(ctx context.Context) (int, error)
	// InsertTeas appends teas with fresh ids.
	InsertTeas(ctx context.Context, teas []models.Tea) (int, error)

	// ListShops returns the directory in its saved order.
	ListShops(ctx context.Context) ([]models.Shop, error)
	// SaveShops overwrites the directory, keeping ids and order.
	SaveShops(ctx context.Context, shops []models.Shop) error
	// InsertShops appends shops, skipping any whose (name, website) is
	// already stored.
	InsertShops(ctx context.Context, shops []models.Shop) (int, error)

	// ReplaceCollection swaps every tea, and the shops when shops is
	// non-nil, atomically.
	ReplaceCollection(ctx context.Context, teas []models.Tea, shops []models.Shop) error

	Close() error
}
