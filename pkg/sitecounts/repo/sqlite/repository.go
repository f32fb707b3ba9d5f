// Package sqlite contains a SQLite implementation of sitecounts.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

const (
	taxonomyCategory = "category"
	taxonomyTag      = "tag"
)

// Repository implements sitecounts.Repository with SQLite.
type Repository struct {
	db       *sql.DB
	location *time.Location
}

// Option configures the repository
type Option func(*Repository)

// WithLocation sets the time zone publish hours are computed in when items
// are stored (default UTC).
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.location = loc
		}
	}
}

// New creates a new SQLite repository.
func New(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{db: db, location: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open opens the database at dsn and returns a repository over it.
func Open(dsn string, opts ...Option) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db, opts...), nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS content_types (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	slug     TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	public   INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS content_items (
	id           INTEGER PRIMARY KEY,
	type         TEXT NOT NULL,
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	published_at INTEGER NOT NULL,
	publish_hour INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS content_item_terms (
	item_id  INTEGER NOT NULL,
	taxonomy TEXT NOT NULL,
	term     TEXT NOT NULL,
	PRIMARY KEY (item_id, taxonomy, term)
);

CREATE INDEX IF NOT EXISTS idx_content_items_type_status ON content_items (type, status);
`

// Migrate creates the tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// RegisterType inserts a content type or updates its name and visibility,
// keeping its original position.
func (r *Repository) RegisterType(ctx context.Context, t sitecounts.ContentType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content_types (slug, name, public) VALUES (?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET name = excluded.name, public = excluded.public`,
		t.Slug, t.Name, t.Public,
	)
	if err != nil {
		return fmt.Errorf("failed to register content type: %w", err)
	}
	return nil
}

// PutItem inserts or replaces an item together with its terms.
func (r *Repository) PutItem(ctx context.Context, item sitecounts.Item) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_types WHERE slug = ?", item.Type).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check content type: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", sitecounts.ErrUnknownContentType, item.Type)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO content_items (id, type, title, status, published_at, publish_hour)
		VALUES (?, ?, ?, ?, ?, ?)`,
		int64(item.ID), item.Type, item.Title, string(item.Status),
		item.PublishedAt.UnixNano(), item.PublishedAt.In(r.location).Hour(),
	)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM content_item_terms WHERE item_id = ?", int64(item.ID)); err != nil {
		return fmt.Errorf("failed to clear item terms: %w", err)
	}
	for _, term := range item.Categories {
		if err = insertTerm(ctx, tx, item.ID, taxonomyCategory, term); err != nil {
			return err
		}
	}
	for _, term := range item.Tags {
		if err = insertTerm(ctx, tx, item.ID, taxonomyTag, term); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item: %w", err)
	}
	return nil
}

func insertTerm(ctx context.Context, tx *sql.Tx, id sitecounts.ItemID, taxonomy, term string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO content_item_terms (item_id, taxonomy, term) VALUES (?, ?, ?)",
		int64(id), taxonomy, term,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s term: %w", taxonomy, err)
	}
	return nil
}

func (r *Repository) ListPublicTypes(ctx context.Context) ([]sitecounts.ContentType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT slug, name, public FROM content_types WHERE public = 1 ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list content types: %w", err)
	}
	defer rows.Close()

	var types []sitecounts.ContentType
	for rows.Next() {
		var t sitecounts.ContentType
		if err := rows.Scan(&t.Slug, &t.Name, &t.Public); err != nil {
			return nil, fmt.Errorf("failed to scan content type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *Repository) CountItems(ctx context.Context, typeSlug string, status sitecounts.ItemStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM content_items WHERE type = ? AND status = ?",
		typeSlug, string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func (r *Repository) QueryItems(ctx context.Context, q sitecounts.ListQuery) ([]sitecounts.ContentItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	if q.ItemType != "" {
		conds = append(conds, "i.type = ?")
		args = append(args, q.ItemType)
	}
	if q.Status != "" {
		conds = append(conds, "i.status = ?")
		args = append(args, string(q.Status))
	}
	if q.Window != nil {
		conds = append(conds, "i.publish_hour >= ?", "i.publish_hour <= ?")
		args = append(args, q.Window.StartHour, q.Window.EndHour)
	}
	termCond := "EXISTS (SELECT 1 FROM content_item_terms t WHERE t.item_id = i.id AND t.taxonomy = ? AND t.term = ?)"
	if q.Category != "" {
		conds = append(conds, termCond)
		args = append(args, taxonomyCategory, q.Category)
	}
	if q.Tag != "" {
		conds = append(conds, termCond)
		args = append(args, taxonomyTag, q.Tag)
	}

	query := "SELECT i.id, i.title FROM content_items i"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.published_at DESC, i.id DESC"
	if q.MaxResults > 0 {
		query += " LIMIT ?"
		args = append(args, q.MaxResults)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []sitecounts.ContentItem
	for rows.Next() {
		var (
			id    int64
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, sitecounts.ContentItem{ID: sitecounts.ItemID(id), Title: title})
	}
	return items, rows.Err()
}
