package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/tea-buddy/internal/models"
)

// SQLiteStore is the local single-user store. It also keeps the semantic
// search vectors and the query cache.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the database file, creating its directory and schema
// when needed. seed is written to the shop directory on first run only.
func OpenSQLite(dbPath string, seed []models.Shop) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seedShops(context.Background(), seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed shops: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// createSchema is private as it's only called by OpenSQLite.
func createSchema(db *sql.DB) error {
	teaTable := `
	CREATE TABLE IF NOT EXISTS teas (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	  in_stock INTEGER NOT NULL DEFAULT 1,
	  is_wishlist INTEGER NOT NULL DEFAULT 0,
	  stock_grams REAL,
	  rating INTEGER,
	  created_at TEXT,
	  description_embedding BLOB -- semantic search vector
	);
	CREATE INDEX IF NOT EXISTS idx_teas_wishlist ON teas(is_wishlist);
	`
	if _, err := db.Exec(teaTable); err != nil {
		return err
	}

	// Shops keep an explicit position: lookup order matters.
	shopTable := `
	CREATE TABLE IF NOT EXISTS shops (
	  id INTEGER PRIMARY KEY,
	  position INTEGER NOT NULL,
	  name TEXT NOT NULL,
	  variations TEXT NOT NULL DEFAULT '[]',
	  url_patterns TEXT NOT NULL DEFAULT '[]',
	  website TEXT
	);
	`
	if _, err := db.Exec(shopTable); err != nil {
		return err
	}

	// Search History Table (for local caching of AI queries)
	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query_text TEXT PRIMARY KEY,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	metaTable := `
	CREATE TABLE IF NOT EXISTS app_meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
	_, err := db.Exec(metaTable)
	return err
}

// seedShops writes the default directory the first time the database is
// opened. Deleting every shop later does not bring the seed back.
func (s *SQLiteStore) seedShops(ctx context.Context, seed []models.Shop) error {
	var done string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_meta WHERE key = 'shops_seeded'`).Scan(&done)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if err := s.SaveShops(ctx, seed); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO app_meta (key, value) VALUES ('shops_seeded', '1')`)
	return err
}

// --- Teas ---

const teaColumns = `id, name, type, brand, origin, temperature, time, method, quantity, infusions,
	description, url, image_url, in_stock, is_wishlist, stock_grams, rating, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTea(row rowScanner) (models.Tea, error) {
	var (
		t      models.Tea
		id     int64
		grams  sql.NullFloat64
		rating sql.NullInt64

		typ, brand, origin, temp, tm, method      sql.NullString
		quantity, infusions, desc, url, image, ts sql.NullString
	)
	err := row.Scan(&id, &t.Name, &typ, &brand, &origin, &temp, &tm, &method, &quantity, &infusions,
		&desc, &url, &image, &t.InStock, &t.IsWishlist, &grams, &rating, &ts)
	if err != nil {
		return models.Tea{}, err
	}
	t.ID = models.ID(id)
	t.Type, t.Brand, t.Origin = typ.String, brand.String, origin.String
	t.Temperature, t.Time, t.Method = temp.String, tm.String, method.String
	t.Quantity, t.Infusions, t.Description = quantity.String, infusions.String, desc.String
	t.URL, t.ImageURL, t.CreatedAt = url.String, image.String, ts.String
	if grams.Valid {
		g := grams.Float64
		t.StockGrams = &g
	}
	t.Rating = int(rating.Int64)
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func teaArgs(t models.Tea) []any {
	var grams sql.NullFloat64
	if t.StockGrams != nil {
		grams = sql.NullFloat64{Float64: *t.StockGrams, Valid: true}
	}
	return []any{
		t.Name,
		nullString(t.Type),
		nullString(t.Brand),
		nullString(t.Origin),
		nullString(t.Temperature),
		nullString(t.Time),
		nullString(t.Method),
		nullString(t.Quantity),
		nullString(t.Infusions),
		nullString(t.Description),
		nullString(t.URL),
		nullString(t.ImageURL),
		t.InStock,
		t.IsWishlist,
		grams,
		sql.NullInt64{Int64: int64(t.Rating), Valid: t.Rating > 0},
		nullString(t.CreatedAt),
	}
}

const insertTeaSQL = `
	INSERT INTO teas (
	  id, name, type, brand, origin, temperature, time, method, quantity, infusions,
	  description, url, image_url, in_stock, is_wishlist, stock_grams, rating, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *SQLiteStore) ListTeas(ctx context.Context) ([]models.Tea, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teaColumns+` FROM teas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teas: %w", err)
	}
	defer rows.Close()

	teas := []models.Tea{}
	for rows.Next() {
		t, err := scanTea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tea: %w", err)
		}
		teas = append(teas, t)
	}
	return teas, rows.Err()
}

func (s *SQLiteStore) GetTea(ctx context.Context, id models.ID) (models.Tea, error) {
	t, err := scanTea(s.db.QueryRowContext(ctx, `SELECT `+teaColumns+` FROM teas WHERE id = ?`, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tea{}, fmt.Errorf("tea %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Tea{}, fmt.Errorf("failed to get tea %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLiteStore) AddTea(ctx context.Context, t models.Tea) (models.Tea, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Tea{}, errors.New("tea name is required")
	}
	if t.CreatedAt == "" {
		t.CreatedAt = now()
	}
	args := append([]any{nil}, teaArgs(t)...)
	res, err := s.db.ExecContext(ctx, insertTeaSQL, args...)
	if err != nil {
		return models.Tea{}, fmt.Errorf("failed to add tea: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Tea{}, err
	}
	return s.GetTea(ctx, models.ID(id))
}

// UpdateTea overwrites every field of the tea with t.ID. The stored search
// vector is dropped so the next embed run refreshes it.
func (s *SQLiteStore) UpdateTea(ctx context.Context, t models.Tea) (models.Tea, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Tea{}, errors.New("tea name is required")
	}
	args := append(teaArgs(t)[:16], int64(t.ID))
	res, err := s.db.ExecContext(ctx, `
	UPDATE teas SET
	  name = ?, type = ?, brand = ?, origin = ?, temperature = ?, time = ?, method = ?,
	  quantity = ?, infusions = ?, description = ?, url = ?, image_url = ?,
	  in_stock = ?, is_wishlist = ?, stock_grams = ?, rating = ?,
	  description_embedding = NULL
	WHERE id = ?`, args...)
	if err != nil {
		return models.Tea{}, fmt.Errorf("failed to update tea %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Tea{}, fmt.Errorf("tea %d: %w", t.ID, ErrNotFound)
	}
	return s.GetTea(ctx, t.ID)
}

func (s *SQLiteStore) DeleteTea(ctx context.Context, id models.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teas WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete tea %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tea %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) CountTeas(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count teas: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) InsertTeas(ctx context.Context, teas []models.Tea) (int, error) {
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		count, err = insertTeas(ctx, tx, teas, false)
		return err
	})
	return count, err
}

// insertTeas writes teas inside tx. With keepIDs, positive ids are reused
// unless two rows claim the same one.
func insertTeas(ctx context.Context, tx *sql.Tx, teas []models.Tea, keepIDs bool) (int, error) {
	stmt, err := tx.PrepareContext(ctx, insertTeaSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	ids := make([]any, len(teas))
	if keepIDs {
		ids = keptIDs(len(teas), func(i int) models.ID { return teas[i].ID })
	}
	for _, i := range explicitFirst(ids) {
		t := teas[i]
		if t.CreatedAt == "" {
			t.CreatedAt = now()
		}
		if _, err := stmt.ExecContext(ctx, append([]any{ids[i]}, teaArgs(t)...)...); err != nil {
			return 0, fmt.Errorf("failed to insert tea %q: %w", t.Name, err)
		}
	}
	return len(teas), nil
}

// keptIDs returns the id to insert for each row: the row's own id the first
// time it appears, nil (auto-assigned) for zero or repeated ids.
func keptIDs(n int, idAt func(int) models.ID) []any {
	ids := make([]any, n)
	used := make(map[models.ID]bool)
	for i := 0; i < n; i++ {
		if id := idAt(i); id > 0 && !used[id] {
			ids[i] = int64(id)
			used[id] = true
		}
	}
	return ids
}

// explicitFirst orders row indexes so rows with a fixed id are inserted
// before auto-assigned ones can claim that id.
func explicitFirst(ids []any) []int {
	order := make([]int, 0, len(ids))
	for i, id := range ids {
		if id != nil {
			order = append(order, i)
		}
	}
	for i, id := range ids {
		if id == nil {
			order = append(order, i)
		}
	}
	return order
}

// --- Shops ---

func (s *SQLiteStore) ListShops(ctx context.Context) ([]models.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, variations, url_patterns, website FROM shops ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := []models.Shop{}
	for rows.Next() {
		var (
			sh                   models.Shop
			id                   int64
			variations, patterns string
			website              sql.NullString
		)
		if err := rows.Scan(&id, &sh.Name, &variations, &patterns, &website); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		sh.ID = models.ID(id)
		sh.Website = website.String
		if err := json.Unmarshal([]byte(variations), &sh.Variations); err != nil {
			return nil, fmt.Errorf("shop %d variations: %w", id, err)
		}
		if err := json.Unmarshal([]byte(patterns), &sh.URLPatterns); err != nil {
			return nil, fmt.Errorf("shop %d url patterns: %w", id, err)
		}
		shops = append(shops, sh)
	}
	return shops, rows.Err()
}

func (s *SQLiteStore) SaveShops(ctx context.Context, shops []models.Shop) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceShops(ctx, tx, shops)
	})
}

func replaceShops(ctx context.Context, tx *sql.Tx, shops []models.Shop) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM shops`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shops (id, position, name, variations, url_patterns, website) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ids := keptIDs(len(shops), func(i int) models.ID { return shops[i].ID })
	for _, i := range explicitFirst(ids) {
		if err := insertShop(ctx, stmt, ids[i], i, shops[i]); err != nil {
			return err
		}
	}
	return nil
}

func insertShop(ctx context.Context, stmt *sql.Stmt, id any, position int, sh models.Shop) error {
	variations, err := json.Marshal(nonNil(sh.Variations))
	if err != nil {
		return err
	}
	patterns, err := json.Marshal(nonNil(sh.URLPatterns))
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, id, position, sh.Name, string(variations), string(patterns), nullString(sh.Website)); err != nil {
		return fmt.Errorf("failed to save shop %q: %w", sh.Name, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *SQLiteStore) InsertShops(ctx context.Context, shops []models.Shop) (int, error) {
	existing, err := s.ListShops(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, sh := range existing {
		seen[shopIdentity(sh)] = true
	}

	var count int
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO shops (id, position, name, variations, url_patterns, website) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		position := len(existing)
		for _, sh := range shops {
			key := shopIdentity(sh)
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := insertShop(ctx, stmt, nil, position, sh); err != nil {
				return err
			}
			position++
			count++
		}
		return nil
	})
	return count, err
}

func shopIdentity(sh models.Shop) string {
	return strings.ToLower(strings.TrimSpace(sh.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(sh.Website))
}

// --- Import ---

func (s *SQLiteStore) ReplaceCollection(ctx context.Context, teas []models.Tea, shops []models.Shop) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM teas`); err != nil {
			return err
		}
		if _, err := insertTeas(ctx, tx, teas, true); err != nil {
			return err
		}
		if shops != nil {
			return replaceShops(ctx, tx, shops)
		}
		return nil
	})
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
