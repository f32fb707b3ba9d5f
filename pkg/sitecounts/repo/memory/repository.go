package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tendant/site-counts/pkg/sitecounts"
)

// Repository implements sitecounts.Repository using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	types     []sitecounts.ContentType // registration order
	typeIndex map[string]int           // slug -> index into types
	items     map[sitecounts.ItemID]*sitecounts.Item
	location  *time.Location
}

// Option configures the repository
type Option func(*Repository)

// WithLocation sets the time zone publish hours are read in (default UTC)
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.location = loc
		}
	}
}

// New creates a new in-memory repository
func New(opts ...Option) *Repository {
	r := &Repository{
		typeIndex: make(map[string]int),
		items:     make(map[sitecounts.ItemID]*sitecounts.Item),
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterType adds a content type, or updates it in place if the slug is
// already registered.
func (r *Repository) RegisterType(ctx context.Context, t sitecounts.ContentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, exists := r.typeIndex[t.Slug]; exists {
		r.types[i] = t
		return nil
	}
	r.typeIndex[t.Slug] = len(r.types)
	r.types = append(r.types, t)
	return nil
}

// PutItem stores a copy of item, replacing any item with the same id.
func (r *Repository) PutItem(ctx context.Context, item sitecounts.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.typeIndex[item.Type]; !exists {
		return fmt.Errorf("%w: %s", sitecounts.ErrUnknownContentType, item.Type)
	}

	// Create a copy to avoid external modifications
	itemCopy := item
	itemCopy.Categories = append([]string(nil), item.Categories...)
	itemCopy.Tags = append([]string(nil), item.Tags...)
	r.items[item.ID] = &itemCopy
	return nil
}

// Close is a no-op; it lets the repository stand in wherever a database
// backed one is closed.
func (r *Repository) Close() error {
	return nil
}

func (r *Repository) ListPublicTypes(ctx context.Context) ([]sitecounts.ContentType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]sitecounts.ContentType, 0, len(r.types))
	for _, t := range r.types {
		if t.Public {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *Repository) CountItems(ctx context.Context, typeSlug string, status sitecounts.ItemStatus) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, item := range r.items {
		if item.Type == typeSlug && item.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *Repository) QueryItems(ctx context.Context, q sitecounts.ListQuery) ([]sitecounts.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*sitecounts.Item
	for _, item := range r.items {
		if q.Matches(*item, r.location) {
			matched = append(matched, item)
		}
	}

	// Sort by published_at descending, then id descending
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PublishedAt.Equal(matched[j].PublishedAt) {
			return matched[i].PublishedAt.After(matched[j].PublishedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if q.MaxResults > 0 && len(matched) > q.MaxResults {
		matched = matched[:q.MaxResults]
	}

	result := make([]sitecounts.ContentItem, len(matched))
	for i, item := range matched {
		result[i] = sitecounts.ContentItem{ID: item.ID, Title: item.Title}
	}
	return result, nil
}
