// Package seed loads a JSON dataset of content types and items into a
// repository. Datasets are read from local files or S3 objects.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tendant/site-counts/pkg/sitecounts"
)

// Store is implemented by every repository under repo/.
type Store interface {
	RegisterType(ctx context.Context, t sitecounts.ContentType) error
	PutItem(ctx context.Context, item sitecounts.Item) error
}

// Dataset is the decoded seed file.
type Dataset struct {
	Types []sitecounts.ContentType
	Items []sitecounts.Item
}

type typeRecord struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Public *bool  `json:"public"` // defaults to true
}

type itemRecord struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Status      string    `json:"status"` // defaults to published
	PublishedAt time.Time `json:"published_at"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
}

type document struct {
	Types []typeRecord `json:"types"`
	Items []itemRecord `json:"items"`
}

// Decode reads a dataset from r.
func Decode(r io.Reader) (*Dataset, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	ds := &Dataset{
		Types: make([]sitecounts.ContentType, 0, len(doc.Types)),
		Items: make([]sitecounts.Item, 0, len(doc.Items)),
	}
	for _, t := range doc.Types {
		if t.Slug == "" {
			return nil, fmt.Errorf("seed content type without slug")
		}
		public := true
		if t.Public != nil {
			public = *t.Public
		}
		name := t.Name
		if name == "" {
			name = t.Slug
		}
		ds.Types = append(ds.Types, sitecounts.ContentType{Slug: t.Slug, Name: name, Public: public})
	}
	for _, it := range doc.Items {
		status := sitecounts.ItemStatus(it.Status)
		if status == "" {
			status = sitecounts.ItemStatusPublished
		}
		if !status.IsValid() {
			return nil, fmt.Errorf("seed item %d: %w: %q", it.ID, sitecounts.ErrInvalidItemStatus, it.Status)
		}
		ds.Items = append(ds.Items, sitecounts.Item{
			ID:          sitecounts.ItemID(it.ID),
			Type:        it.Type,
			Title:       it.Title,
			Status:      status,
			PublishedAt: it.PublishedAt,
			Categories:  it.Categories,
			Tags:        it.Tags,
		})
	}
	return ds, nil
}

// Apply writes every type, then every item, into store.
func (ds *Dataset) Apply(ctx context.Context, store Store) error {
	for _, t := range ds.Types {
		if err := store.RegisterType(ctx, t); err != nil {
			return fmt.Errorf("failed to register type %s: %w", t.Slug, err)
		}
	}
	for _, item := range ds.Items {
		if err := store.PutItem(ctx, item); err != nil {
			return fmt.Errorf("failed to put item %d: %w", item.ID, err)
		}
	}
	return nil
}

// Load opens the dataset at rawURL, decodes it and applies it to store.
func Load(ctx context.Context, rawURL string, s3cfg S3Config, store Store) (*Dataset, error) {
	rc, err := Open(ctx, rawURL, s3cfg)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err := Decode(rc)
	if err != nil {
		return nil, err
	}
	if err := ds.Apply(ctx, store); err != nil {
		return nil, err
	}
	return ds, nil
}
