// Package catalog keeps the inventory sheet in memory for item lookups while composing a
// quotation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"elem-admin/internal/storage"
)

var (
	ErrEmptyTerm   = errors.New("please enter serial no or model no")
	ErrLoading     = errors.New("inventory is still loading, please wait")
	ErrUnavailable = errors.New("inventory data not available, please try again")
	ErrNotFound    = errors.New("no product found with this serial no or model no")
)

type Source interface {
	CatalogEntries(ctx context.Context) ([]storage.CatalogEntry, error)
}

// Cache is populated once per process and shared by every composer. Only Invalidate
// empties it.
type Cache struct {
	log    *slog.Logger
	source Source
	group  singleflight.Group

	mu        sync.RWMutex
	populated bool
	loading   bool
	entries   []storage.CatalogEntry
}

func NewCache(log *slog.Logger, source Source) *Cache {
	return &Cache{log: log, source: source}
}

func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

func (c *Cache) Entries() []storage.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.populated = false
	c.entries = nil
	c.mu.Unlock()
}

// Load returns the cached entries, fetching them on first use. Concurrent callers share
// one fetch.
func (c *Cache) Load(ctx context.Context) ([]storage.CatalogEntry, error) {
	const op = "service.catalog.Load"

	if entries, ok := c.cached(); ok {
		return entries, nil
	}

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		if entries, ok := c.cached(); ok {
			return entries, nil
		}

		c.setLoading(true)
		defer c.setLoading(false)

		entries, err := c.source.CatalogEntries(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries = entries
		c.populated = true
		c.mu.Unlock()

		c.log.With(slog.String("op", op), slog.Int("entries", len(entries))).Info("catalog loaded")
		return entries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v.([]storage.CatalogEntry), nil
}

// Warm loads the catalog in the background at startup.
func (c *Cache) Warm(ctx context.Context) error {
	_, err := c.Load(ctx)
	return err
}

func (c *Cache) cached() ([]storage.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries, c.populated
}

func (c *Cache) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Search matches code case-insensitively against serial number or model number. It never
// triggers a fetch; the first match in sheet order wins.
func (c *Cache) Search(code string) (storage.CatalogEntry, error) {
	term := strings.ToLower(strings.TrimSpace(code))
	if term == "" {
		return storage.CatalogEntry{}, ErrEmptyTerm
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.loading && !c.populated {
		return storage.CatalogEntry{}, ErrLoading
	}
	if !c.populated || len(c.entries) == 0 {
		return storage.CatalogEntry{}, ErrUnavailable
	}

	for _, e := range c.entries {
		if strings.ToLower(strings.TrimSpace(e.SerialNumber)) == term ||
			strings.ToLower(strings.TrimSpace(e.ModelNo)) == term {
			return e, nil
		}
	}

	return storage.CatalogEntry{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(code))
}

// Lookup is Search for a composer that was just opened: an empty cache is filled first.
func (c *Cache) Lookup(ctx context.Context, code string) (storage.CatalogEntry, error) {
	entry, err := c.Search(code)
	if !errors.Is(err, ErrUnavailable) || c.Populated() {
		return entry, err
	}

	if _, loadErr := c.Load(ctx); loadErr != nil {
		c.log.With(
			slog.String("op", "service.catalog.Lookup"),
			slog.String("error", loadErr.Error()),
		).Error("failed to load catalog")
		return storage.CatalogEntry{}, ErrUnavailable
	}

	return c.Search(code)
}

// Enrich overwrites the catalog-backed fields of an item. The available quantity is
// advisory and returned separately.
func Enrich(it storage.Item, e storage.CatalogEntry) (storage.Item, float64) {
	it.SerialNumber = e.SerialNumber
	it.Title = e.Title
	it.Price = e.Price
	it.Image = storage.ImageRef{Preview: DisplayableImageURL(e.Image)}
	it.ModelNo = e.ModelNo
	it.Make = e.Make
	it.Size = e.Size
	it.Color = e.Color
	it.Specification = e.Specification
	it.Remarks = ""
	return it, e.AvailableQty
}

const thumbnailURL = "https://drive.google.com/thumbnail?id=%s&sz=w400"

var (
	driveFilePath = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveIDParam  = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	driveAnyID    = regexp.MustCompile(`([a-zA-Z0-9_-]{25,})`)
)

// DisplayableImageURL turns Drive share links into thumbnail links; other URLs and data
// URIs pass through.
func DisplayableImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "blob:") {
		return raw
	}

	if m := driveFilePath.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf(thumbnailURL, m[1])
	}
	if strings.Contains(raw, "thumbnail?id=") {
		return raw
	}
	if m := driveIDParam.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf(thumbnailURL, m[1])
	}
	if m := driveAnyID.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf(thumbnailURL, m[1])
	}

	return raw
}
