// Package catalog persists parsed product records in SQLite and exports
// them as CSV.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

// ErrNotFound is returned when a product or source row does not exist.
var ErrNotFound = errors.New("not found")

// Source is a row of the sources table.
type Source struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	SitemapURL  string  `json:"sitemap_url"`
	LastCrawl   *int64  `json:"last_crawl,omitempty"`
	LastPages   *int    `json:"last_pages,omitempty"`
	LastParsed  *int    `json:"last_parsed,omitempty"`
	LastError   *string `json:"last_error,omitempty"`

	// Availability of the sitemap, from the periodic check.
	LastCheck      *int64  `json:"last_check,omitempty"`
	LastStatus     *int    `json:"last_status,omitempty"`
	LastCheckError *string `json:"last_check_error,omitempty"`

	UpdatedAt int64 `json:"updated_at"`
}

// CrawlResult is what RecordCrawl stores about a finished crawl.
type CrawlResult struct {
	Pages  int
	Parsed int
	Err    error
}

// Store wraps the catalog database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id               TEXT PRIMARY KEY,
	description      TEXT NOT NULL,
	sitemap_url      TEXT NOT NULL,
	last_crawl       INTEGER,
	last_pages       INTEGER,
	last_parsed      INTEGER,
	last_error       TEXT,
	last_check       INTEGER,
	last_status      INTEGER,
	last_check_error TEXT,
	updated_at       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	source          TEXT NOT NULL,
	external_id     TEXT NOT NULL,
	url             TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	bean_type       TEXT NOT NULL DEFAULT '',
	price           REAL,
	price_original  REAL,
	weight_g        INTEGER,
	in_stock        INTEGER,
	process_raw     TEXT NOT NULL DEFAULT '',
	roast_raw       TEXT NOT NULL DEFAULT '',
	variety_raw     TEXT NOT NULL DEFAULT '',
	origin_raw      TEXT NOT NULL DEFAULT '',
	region_raw      TEXT NOT NULL DEFAULT '',
	farm_raw        TEXT NOT NULL DEFAULT '',
	norm_process    TEXT NOT NULL DEFAULT '',
	norm_roast      TEXT NOT NULL DEFAULT '',
	norm_variety    TEXT NOT NULL DEFAULT '',
	norm_country    TEXT NOT NULL DEFAULT '',
	updated_at      INTEGER NOT NULL,
	PRIMARY KEY (source, external_id)
);
CREATE INDEX IF NOT EXISTS idx_products_country ON products(norm_country);`

// Open opens (or creates) the SQLite database at path and ensures the
// tables exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts a row per adapter. Existing rows are left untouched so that
// crawl history survives restarts.
func (s *Store) Seed(ctx context.Context, adapters []shop.Adapter) error {
	const q = `INSERT OR IGNORE INTO sources (id, description, sitemap_url, updated_at)
		VALUES (?, ?, ?, ?)`
	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := s.db.ExecContext(ctx, q, a.ID(), a.Description(), a.SitemapURL(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// RecordCrawl stores the outcome of a crawl of source.
func (s *Store) RecordCrawl(ctx context.Context, source string, res CrawlResult) error {
	var errPtr *string
	if res.Err != nil {
		msg := res.Err.Error()
		errPtr = &msg
	}
	now := time.Now().Unix()
	r, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_crawl = ?, last_pages = ?, last_parsed = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		now, res.Pages, res.Parsed, errPtr, now, source)
	if err != nil {
		return fmt.Errorf("record crawl for %s: %w", source, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("source %s: %w", source, ErrNotFound)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *Store) UpdateCheck(ctx context.Context, source string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_check = ?, last_status = ?, last_check_error = ? WHERE id = ?`,
		time.Now().Unix(), status, errPtr, source)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", source, err)
	}
	return nil
}

// Sources returns all sources ordered by id.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, sitemap_url,
		last_crawl, last_pages, last_parsed, last_error,
		last_check, last_status, last_check_error, updated_at
		FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Description, &src.SitemapURL,
			&src.LastCrawl, &src.LastPages, &src.LastParsed, &src.LastError,
			&src.LastCheck, &src.LastStatus, &src.LastCheckError, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

const upsertProduct = `INSERT INTO products (
	source, external_id, url, title, bean_type,
	price, price_original, weight_g, in_stock,
	process_raw, roast_raw, variety_raw, origin_raw, region_raw, farm_raw,
	norm_process, norm_roast, norm_variety, norm_country, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source, external_id) DO UPDATE SET
	url = excluded.url,
	title = excluded.title,
	bean_type = excluded.bean_type,
	price = excluded.price,
	price_original = excluded.price_original,
	weight_g = excluded.weight_g,
	in_stock = excluded.in_stock,
	process_raw = excluded.process_raw,
	roast_raw = excluded.roast_raw,
	variety_raw = excluded.variety_raw,
	origin_raw = excluded.origin_raw,
	region_raw = excluded.region_raw,
	farm_raw = excluded.farm_raw,
	norm_process = excluded.norm_process,
	norm_roast = excluded.norm_roast,
	norm_variety = excluded.norm_variety,
	norm_country = excluded.norm_country,
	updated_at = excluded.updated_at`

// Upsert writes records in one transaction, replacing rows with the same
// (source, external_id).
func (s *Store) Upsert(ctx context.Context, records []*product.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertProduct)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range records {
		if r.ExternalID == "" {
			return fmt.Errorf("upsert %s record %q: empty external id", r.Source, r.Title)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Source, r.ExternalID, r.URL, r.Title, string(r.BeanType),
			r.Price, r.PriceOriginal, r.WeightG, r.InStock,
			r.Raw.Process, r.Raw.Roast, r.Raw.Variety, r.Raw.Origin, r.Raw.Region, r.Raw.Farm,
			r.Canonical.Process, r.Canonical.Roast,
			strings.Join(r.Canonical.Variety, product.VarietySeparator),
			r.Canonical.Country, now,
		); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", r.Source, r.ExternalID, err)
		}
	}
	return tx.Commit()
}

const selectProduct = `SELECT source, external_id, url, title, bean_type,
	price, price_original, weight_g, in_stock,
	process_raw, roast_raw, variety_raw, origin_raw, region_raw, farm_raw,
	norm_process, norm_roast, norm_variety, norm_country
	FROM products`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*product.Record, error) {
	var (
		r       product.Record
		bean    string
		variety string
	)
	if err := row.Scan(&r.Source, &r.ExternalID, &r.URL, &r.Title, &bean,
		&r.Price, &r.PriceOriginal, &r.WeightG, &r.InStock,
		&r.Raw.Process, &r.Raw.Roast, &r.Raw.Variety, &r.Raw.Origin, &r.Raw.Region, &r.Raw.Farm,
		&r.Canonical.Process, &r.Canonical.Roast, &variety, &r.Canonical.Country); err != nil {
		return nil, err
	}
	r.BeanType = product.BeanType(bean)
	r.Canonical.Variety = []string{}
	if variety != "" {
		r.Canonical.Variety = strings.Split(variety, product.VarietySeparator)
	}
	return &r, nil
}

// Get returns one product.
func (s *Store) Get(ctx context.Context, source, externalID string) (*product.Record, error) {
	row := s.db.QueryRowContext(ctx, selectProduct+` WHERE source = ? AND external_id = ?`, source, externalID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s/%s: %w", source, externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return r, nil
}

// List returns products ordered by source and external id. An empty source
// lists every source; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, source string, limit int) ([]*product.Record, error) {
	q := selectProduct
	var args []any
	if source != "" {
		q += ` WHERE source = ?`
		args = append(args, source)
	}
	q += ` ORDER BY source, external_id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []*product.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
