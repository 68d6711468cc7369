// Package catalog is the SQLite-backed product cache that benchmark runs load
// their retrieval context from.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jackzampolin/optbench/internal/shopify"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	price REAL,
	description TEXT,
	variants TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sync_type TEXT NOT NULL,
	products_count INTEGER,
	status TEXT,
	error_message TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Product is one cached product row, with variants decoded from their stored
// JSON blob.
type Product struct {
	ProductID   string           `json:"product_id" db:"product_id"`
	Title       string           `json:"title" db:"title"`
	Price       float64          `json:"price" db:"price"`
	Description string           `json:"description" db:"description"`
	Variants    []map[string]any `json:"variants,omitempty" db:"-"`
}

type productRow struct {
	ProductID   string   `db:"product_id"`
	Title       string   `db:"title"`
	Price       *float64 `db:"price"`
	Description *string  `db:"description"`
	Variants    *string  `db:"variants"`
}

// SyncResult reports one sync attempt.
type SyncResult struct {
	Status        string `json:"status"` // "success", "no_products", "error"
	ProductsCount int    `json:"products_count"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// SyncEntry is one row of the sync audit log.
type SyncEntry struct {
	ID            int64     `db:"id" json:"id"`
	SyncType      string    `db:"sync_type" json:"sync_type"`
	ProductsCount int       `db:"products_count" json:"products_count"`
	Status        string    `db:"status" json:"status"`
	ErrorMessage  *string   `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PriceRange is the min/max price over cached products.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Store wraps the SQLite product cache.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the cache at path and initializes the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProductFetcher pulls the upstream product list. *shopify.Client satisfies it.
type ProductFetcher interface {
	Products(ctx context.Context) ([]shopify.Product, error)
}

// Sync fetches products from the API and upserts them, recording the attempt
// in sync_log. It returns a result even on failure so callers can report it.
func (s *Store) Sync(ctx context.Context, fetcher ProductFetcher) (*SyncResult, error) {
	result := &SyncResult{Status: "success"}

	products, err := fetcher.Products(ctx)
	if err != nil {
		result.Status = "error"
		result.ErrorMessage = err.Error()
		s.logSync(ctx, "api", 0, result.Status, result.ErrorMessage)
		return result, fmt.Errorf("fetching products: %w", err)
	}
	if len(products) == 0 {
		result.Status = "no_products"
		s.logSync(ctx, "api", 0, result.Status, "")
		return result, nil
	}

	if err := s.upsert(ctx, products); err != nil {
		result.Status = "error"
		result.ErrorMessage = err.Error()
		s.logSync(ctx, "api", 0, result.Status, result.ErrorMessage)
		return result, err
	}

	count, err := s.Count(ctx)
	if err != nil {
		return result, err
	}
	result.ProductsCount = count
	s.logSync(ctx, "api", count, result.Status, "")
	return result, nil
}

func (s *Store) upsert(ctx context.Context, products []shopify.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sync transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		var price *float64
		if len(p.Variants) > 0 {
			if v, err := strconv.ParseFloat(p.Variants[0].Price, 64); err == nil {
				price = &v
			}
		}
		variantsJSON, err := json.Marshal(p.Variants)
		if err != nil {
			return fmt.Errorf("encoding variants for product %d: %w", p.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO products (product_id, title, price, description, variants, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			strconv.FormatInt(p.ID, 10), p.Title, price, p.BodyHTML, string(variantsJSON))
		if err != nil {
			return fmt.Errorf("upserting product %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) logSync(ctx context.Context, syncType string, count int, status, errMsg string) {
	var errVal *string
	if errMsg != "" {
		errVal = &errMsg
	}
	// Audit-only; a failed log write must not fail the sync itself.
	s.db.ExecContext(ctx, `
		INSERT INTO sync_log (sync_type, products_count, status, error_message)
		VALUES (?, ?, ?, ?)`,
		syncType, count, status, errVal)
}

// Products returns every cached product.
func (s *Store) Products(ctx context.Context) ([]Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT product_id, title, price, description, variants FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toProduct())
	}
	return out, nil
}

// ProductByID returns one product, or (nil, nil) when absent.
func (s *Store) ProductByID(ctx context.Context, productID string) (*Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row,
		`SELECT product_id, title, price, description, variants FROM products WHERE product_id = ?`,
		productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading product %s: %w", productID, err)
	}
	p := row.toProduct()
	return &p, nil
}

// Search returns products whose title or description matches the query.
func (s *Store) Search(ctx context.Context, query string) ([]Product, error) {
	term := "%" + query + "%"
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT product_id, title, price, description, variants
		FROM products
		WHERE title LIKE ? OR description LIKE ?
		ORDER BY product_id`, term, term)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toProduct())
	}
	return out, nil
}

// Count returns the number of cached products.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return count, nil
}

// Clear deletes every cached product and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return 0, fmt.Errorf("clearing products: %w", err)
	}
	s.logSync(ctx, "clear", count, "success", "")
	return count, nil
}

// PriceRange returns the min and max price over priced products.
func (s *Store) PriceRange(ctx context.Context) (*PriceRange, error) {
	var row struct {
		Min *float64 `db:"min_price"`
		Max *float64 `db:"max_price"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT MIN(price) AS min_price, MAX(price) AS max_price FROM products WHERE price IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("loading price range: %w", err)
	}
	pr := &PriceRange{}
	if row.Min != nil {
		pr.Min = *row.Min
	}
	if row.Max != nil {
		pr.Max = *row.Max
	}
	return pr, nil
}

// SyncHistory returns the most recent sync log entries, newest first.
func (s *Store) SyncHistory(ctx context.Context, limit int) ([]SyncEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []SyncEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, sync_type, products_count, status, error_message, created_at
		FROM sync_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading sync history: %w", err)
	}
	return entries, nil
}

func (r productRow) toProduct() Product {
	p := Product{
		ProductID: r.ProductID,
		Title:     r.Title,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Variants != nil && *r.Variants != "" {
		var variants []map[string]any
		if err := json.Unmarshal([]byte(*r.Variants), &variants); err == nil {
			p.Variants = variants
		}
	}
	return p
}
