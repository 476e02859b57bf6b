package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mspro-labs/tea-buddy/internal/models"
)

const defaultPoolSize = 5

// PostgresStore is the managed remote database. Its columns use the
// snake_case spelling (image_url, in_stock, is_wishlist, stock_grams).
//
// Its queries need a live server and are not covered by unit tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects with a pooled connection and checks it.
func OpenPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS teas (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT,
  brand TEXT,
  origin TEXT,
  temperature TEXT,
  time TEXT,
  method TEXT,
  quantity TEXT,
  infusions TEXT,
  description TEXT,
  url TEXT,
  image_url TEXT,
  in_stock BOOLEAN NOT NULL DEFAULT TRUE,
  is_wishlist BOOLEAN NOT NULL DEFAULT FALSE,
  stock_grams DOUBLE PRECISION,
  rating INTEGER,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shops (
  id BIGSERIAL PRIMARY KEY,
  position INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  variations TEXT[] NOT NULL DEFAULT '{}',
  url_patterns TEXT[] NOT NULL DEFAULT '{}',
  website TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS shops_identity_idx
  ON shops (lower(trim(name)), lower(trim(coalesce(website, ''))));
`

// Migrate creates the tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

const pgTeaColumns = `id, name, COALESCE(type, ''), COALESCE(brand, ''), COALESCE(origin, ''),
	COALESCE(temperature, ''), COALESCE(time, ''), COALESCE(method, ''), COALESCE(quantity, ''),
	COALESCE(infusions, ''), COALESCE(description, ''), COALESCE(url, ''), COALESCE(image_url, ''),
	in_stock, is_wishlist, stock_grams, COALESCE(rating, 0), to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`

const pgInsertTea = `
	INSERT INTO teas (
	  name, type, brand, origin, temperature, time, method, quantity, infusions,
	  description, url, image_url, in_stock, is_wishlist, stock_grams, rating
	) VALUES (
	  @name, @type, @brand, @origin, @temperature, @time, @method, @quantity, @infusions,
	  @description, @url, @image_url, @in_stock, @is_wishlist, @stock_grams, @rating
	) RETURNING id`

func scanPgTea(row pgx.Row) (models.Tea, error) {
	var (
		t  models.Tea
		id int64
	)
	err := row.Scan(&id, &t.Name, &t.Type, &t.Brand, &t.Origin, &t.Temperature, &t.Time, &t.Method,
		&t.Quantity, &t.Infusions, &t.Description, &t.URL, &t.ImageURL,
		&t.InStock, &t.IsWishlist, &t.StockGrams, &t.Rating, &t.CreatedAt)
	t.ID = models.ID(id)
	return t, err
}

func pgText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func teaNamedArgs(t models.Tea) pgx.NamedArgs {
	var rating *int
	if t.Rating > 0 {
		rating = &t.Rating
	}
	return pgx.NamedArgs{
		"name":        t.Name,
		"type":        pgText(t.Type),
		"brand":       pgText(t.Brand),
		"origin":      pgText(t.Origin),
		"temperature": pgText(t.Temperature),
		"time":        pgText(t.Time),
		"method":      pgText(t.Method),
		"quantity":    pgText(t.Quantity),
		"infusions":   pgText(t.Infusions),
		"description": pgText(t.Description),
		"url":         pgText(t.URL),
		"image_url":   pgText(t.ImageURL),
		"in_stock":    t.InStock,
		"is_wishlist": t.IsWishlist,
		"stock_grams": t.StockGrams,
		"rating":      rating,
	}
}

func (s *PostgresStore) ListTeas(ctx context.Context) ([]models.Tea, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pgTeaColumns+` FROM teas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing teas: %w", err)
	}
	defer rows.Close()

	teas := []models.Tea{}
	for rows.Next() {
		t, err := scanPgTea(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tea: %w", err)
		}
		teas = append(teas, t)
	}
	return teas, rows.Err()
}

func (s *PostgresStore) GetTea(ctx context.Context, id models.ID) (models.Tea, error) {
	t, err := scanPgTea(s.pool.QueryRow(ctx, `SELECT `+pgTeaColumns+` FROM teas WHERE id = $1`, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Tea{}, fmt.Errorf("tea %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Tea{}, fmt.Errorf("getting tea %d: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) AddTea(ctx context.Context, t models.Tea) (models.Tea, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Tea{}, errors.New("tea name is required")
	}
	var id int64
	if err := s.pool.QueryRow(ctx, pgInsertTea, teaNamedArgs(t)).Scan(&id); err != nil {
		return models.Tea{}, fmt.Errorf("adding tea: %w", err)
	}
	return s.GetTea(ctx, models.ID(id))
}

func (s *PostgresStore) UpdateTea(ctx context.Context, t models.Tea) (models.Tea, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Tea{}, errors.New("tea name is required")
	}
	args := teaNamedArgs(t)
	args["id"] = int64(t.ID)
	tag, err := s.pool.Exec(ctx, `
	UPDATE teas SET
	  name = @name, type = @type, brand = @brand, origin = @origin, temperature = @temperature,
	  time = @time, method = @method, quantity = @quantity, infusions = @infusions,
	  description = @description, url = @url, image_url = @image_url, in_stock = @in_stock,
	  is_wishlist = @is_wishlist, stock_grams = @stock_grams, rating = @rating
	WHERE id = @id`, args)
	if err != nil {
		return models.Tea{}, fmt.Errorf("updating tea %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.Tea{}, fmt.Errorf("tea %d: %w", t.ID, ErrNotFound)
	}
	return s.GetTea(ctx, t.ID)
}

func (s *PostgresStore) DeleteTea(ctx context.Context, id models.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM teas WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting tea %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tea %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountTeas(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting teas: %w", err)
	}
	return n, nil
}

// InsertTeas sends every insert in one batch inside a transaction.
func (s *PostgresStore) InsertTeas(ctx context.Context, teas []models.Tea) (int, error) {
	if len(teas) == 0 {
		return 0, nil
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return insertPgTeas(ctx, tx, teas)
	})
	if err != nil {
		return 0, fmt.Errorf("inserting teas: %w", err)
	}
	return len(teas), nil
}

func insertPgTeas(ctx context.Context, tx pgx.Tx, teas []models.Tea) error {
	batch := &pgx.Batch{}
	for _, t := range teas {
		batch.Queue(pgInsertTea, teaNamedArgs(t))
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (s *PostgresStore) ListShops(ctx context.Context) ([]models.Shop, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, variations, url_patterns, COALESCE(website, '')
		FROM shops ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}
	defer rows.Close()

	shops := []models.Shop{}
	for rows.Next() {
		var (
			sh models.Shop
			id int64
		)
		if err := rows.Scan(&id, &sh.Name, &sh.Variations, &sh.URLPatterns, &sh.Website); err != nil {
			return nil, fmt.Errorf("scanning shop: %w", err)
		}
		sh.ID = models.ID(id)
		shops = append(shops, sh)
	}
	return shops, rows.Err()
}

const pgInsertShop = `
	INSERT INTO shops (position, name, variations, url_patterns, website)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT DO NOTHING`

func (s *PostgresStore) SaveShops(ctx context.Context, shops []models.Shop) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return replacePgShops(ctx, tx, shops)
	})
}

// replacePgShops keeps each shop's id unless two shops claim the same one,
// then moves the id sequence past the largest stored id. Shops repeating an
// earlier (name, website) pair are dropped, since the unique index would
// reject them.
func replacePgShops(ctx context.Context, tx pgx.Tx, shops []models.Shop) error {
	if _, err := tx.Exec(ctx, `DELETE FROM shops`); err != nil {
		return fmt.Errorf("clearing shops: %w", err)
	}
	shops = uniqueShops(shops)
	ids := keptIDs(len(shops), func(i int) models.ID { return shops[i].ID })
	for _, i := range explicitFirst(ids) {
		sh := shops[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO shops (id, position, name, variations, url_patterns, website)
			VALUES (COALESCE($1::BIGINT, nextval(pg_get_serial_sequence('shops', 'id'))), $2, $3, $4, $5, $6)`,
			ids[i], i, sh.Name, nonNil(sh.Variations), nonNil(sh.URLPatterns), pgText(sh.Website))
		if err != nil {
			return fmt.Errorf("saving shop %q: %w", sh.Name, err)
		}
	}
	_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('shops', 'id'), COALESCE((SELECT MAX(id) FROM shops), 0) + 1, false)`)
	return err
}

// uniqueShops keeps the first shop for each case-folded (name, website).
func uniqueShops(shops []models.Shop) []models.Shop {
	seen := make(map[string]bool, len(shops))
	out := make([]models.Shop, 0, len(shops))
	for _, sh := range shops {
		key := shopIdentity(sh)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sh)
	}
	return out
}

// InsertShops relies on the (name, website) unique index to skip shops
// that already exist.
func (s *PostgresStore) InsertShops(ctx context.Context, shops []models.Shop) (int, error) {
	var inserted int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var next int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM shops`).Scan(&next); err != nil {
			return err
		}
		for _, sh := range shops {
			tag, err := tx.Exec(ctx, pgInsertShop, next, sh.Name, nonNil(sh.Variations), nonNil(sh.URLPatterns), pgText(sh.Website))
			if err != nil {
				return fmt.Errorf("inserting shop %q: %w", sh.Name, err)
			}
			if tag.RowsAffected() > 0 {
				inserted++
				next++
			}
		}
		return nil
	})
	return inserted, err
}

func (s *PostgresStore) ReplaceCollection(ctx context.Context, teas []models.Tea, shops []models.Shop) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM teas`); err != nil {
			return fmt.Errorf("clearing teas: %w", err)
		}
		if len(teas) > 0 {
			if err := insertPgTeas(ctx, tx, teas); err != nil {
				return fmt.Errorf("inserting teas: %w", err)
			}
		}
		if shops != nil {
			return replacePgShops(ctx, tx, shops)
		}
		return nil
	})
}
