package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements sitecounts.Repository using PostgreSQL
type Repository struct {
	db       DBTX
	pool     *pgxpool.Pool // owned; closed by Close
	timezone string
}

// Option configures the repository
type Option func(*Repository)

// WithTimezone sets the time zone publish hours are read in (default UTC)
func WithTimezone(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.timezone = name
		}
	}
}

// New creates a new PostgreSQL repository
func New(db DBTX, opts ...Option) *Repository {
	r := &Repository{db: db, timezone: "UTC"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewWithPool creates a new PostgreSQL repository with connection pool. The
// repository takes ownership of the pool.
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Repository {
	r := New(pool, opts...)
	r.pool = pool
	return r
}

// Close closes the pool passed to NewWithPool. Repositories created with New
// leave the connection to the caller.
func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS content_types (
	slug     TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	public   BOOLEAN NOT NULL DEFAULT TRUE,
	position BIGSERIAL
);

CREATE TABLE IF NOT EXISTS content_items (
	id           BIGINT PRIMARY KEY,
	type         TEXT NOT NULL REFERENCES content_types (slug),
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL,
	categories   TEXT[] NOT NULL DEFAULT '{}',
	tags         TEXT[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS content_items_type_status_idx ON content_items (type, status);
CREATE INDEX IF NOT EXISTS content_items_published_at_idx ON content_items (published_at DESC, id DESC);
`

// CreateSchema creates the named schema if it does not exist. Run it before
// Migrate when the connection's search_path points at that schema.
func (r *Repository) CreateSchema(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if _, err := r.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		return r.handlePostgresError("create schema", err)
	}
	return nil
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, sitecounts.ErrUnknownContentType)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: required field %s is missing", operation, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required", operation)
		case "3F000": // invalid_schema_name
			return fmt.Errorf("%s: schema does not exist - create it or enable AUTO_MIGRATE", operation)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// RegisterType inserts a content type or updates its name and visibility,
// keeping its original position.
func (r *Repository) RegisterType(ctx context.Context, t sitecounts.ContentType) error {
	query := `
		INSERT INTO content_types (slug, name, public) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			public = EXCLUDED.public`

	if _, err := r.db.Exec(ctx, query, t.Slug, t.Name, t.Public); err != nil {
		return r.handlePostgresError("register type", err)
	}
	return nil
}

// PutItem inserts or replaces an item
func (r *Repository) PutItem(ctx context.Context, item sitecounts.Item) error {
	query := `
		INSERT INTO content_items (
			id, type, title, status, published_at, categories, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			published_at = EXCLUDED.published_at,
			categories = EXCLUDED.categories,
			tags = EXCLUDED.tags`

	categories := item.Categories
	if categories == nil {
		categories = []string{}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		int64(item.ID), item.Type, item.Title, string(item.Status),
		item.PublishedAt, categories, tags)
	if err != nil {
		return r.handlePostgresError("put item", err)
	}
	return nil
}

func (r *Repository) ListPublicTypes(ctx context.Context) ([]sitecounts.ContentType, error) {
	query := `
		SELECT slug, name, public
		FROM content_types WHERE public
		ORDER BY position`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list public types", err)
	}
	defer rows.Close()

	var types []sitecounts.ContentType
	for rows.Next() {
		var t sitecounts.ContentType
		if err := rows.Scan(&t.Slug, &t.Name, &t.Public); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list public types", err)
	}
	return types, nil
}

func (r *Repository) CountItems(ctx context.Context, typeSlug string, status sitecounts.ItemStatus) (int, error) {
	query := `SELECT COUNT(*) FROM content_items WHERE type = $1 AND status = $2`

	var n int64
	if err := r.db.QueryRow(ctx, query, typeSlug, string(status)).Scan(&n); err != nil {
		return 0, r.handlePostgresError("count items", err)
	}
	return int(n), nil
}

func (r *Repository) QueryItems(ctx context.Context, q sitecounts.ListQuery) ([]sitecounts.ContentItem, error) {
	query, args := buildListQuery(q, r.timezone)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("query items", err)
	}
	defer rows.Close()

	var items []sitecounts.ContentItem
	for rows.Next() {
		var (
			id    int64
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		items = append(items, sitecounts.ContentItem{ID: sitecounts.ItemID(id), Title: title})
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("query items", err)
	}
	return items, nil
}

// buildListQuery renders q as a parameterized SELECT. Both hour bounds are
// inclusive.
func buildListQuery(q sitecounts.ListQuery, timezone string) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ItemType != "" {
		conds = append(conds, "type = "+arg(q.ItemType))
	}
	if q.Status != "" {
		conds = append(conds, "status = "+arg(string(q.Status)))
	}
	if q.Window != nil {
		tz := arg(timezone)
		conds = append(conds, fmt.Sprintf("EXTRACT(HOUR FROM published_at AT TIME ZONE %s) >= %s", tz, arg(q.Window.StartHour)))
		conds = append(conds, fmt.Sprintf("EXTRACT(HOUR FROM published_at AT TIME ZONE %s) <= %s", tz, arg(q.Window.EndHour)))
	}
	if q.Category != "" {
		conds = append(conds, arg(q.Category)+" = ANY(categories)")
	}
	if q.Tag != "" {
		conds = append(conds, arg(q.Tag)+" = ANY(tags)")
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, title FROM content_items")
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY published_at DESC, id DESC")
	if q.MaxResults > 0 {
		sb.WriteString(" LIMIT " + arg(q.MaxResults))
	}
	return sb.String(), args
}
