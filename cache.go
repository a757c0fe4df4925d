package blog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

// ErrNotFound is returned when a tag slug matches nothing.
var ErrNotFound = errors.New("blog: not found")

// TagCache is an in-memory snapshot of both collections and their ranked
// tags with a TTL. Counts and listings come from the same snapshot.
type TagCache struct {
	mu      sync.RWMutex
	snap    content.MemoryStore
	tags    []tags.Info
	fetched time.Time
	ttl     time.Duration
	store   content.Store
}

// NewTagCache creates a TagCache backed by the given store.
func NewTagCache(s content.Store, ttl time.Duration) *TagCache {
	return &TagCache{store: s, ttl: ttl}
}

func (c *TagCache) valid() bool {
	return c.snap != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TagCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *TagCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	snap := make(content.MemoryStore, len(content.Collections))
	for _, col := range content.Collections {
		entries, err := c.store.GetCollection(ctx, col)
		if err != nil {
			return err
		}
		snap[col] = entries
	}
	infos, err := tags.Collect(ctx, snap)
	if err != nil {
		return err
	}
	c.snap = snap
	c.tags = infos
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the snapshot after ensuring it is fresh. It tries a
// read lock first and only takes the write lock to reload.
func (c *TagCache) ensureLoaded(ctx context.Context) (content.MemoryStore, []tags.Info, error) {
	c.mu.RLock()
	if c.valid() {
		snap, infos := c.snap, c.tags
		c.mu.RUnlock()
		return snap, infos, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.snap, c.tags, nil
}

// Tags returns the ranked tags.
func (c *TagCache) Tags(ctx context.Context) ([]tags.Info, error) {
	_, infos, err := c.ensureLoaded(ctx)
	return infos, err
}

// Entries returns every entry, blog first, then til.
func (c *TagCache) Entries(ctx context.Context) ([]content.Entry, error) {
	snap, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return flatten(snap), nil
}

// Tagged resolves slug and returns the tag with its entries, newest first.
// Drafts are dropped unless includeDrafts is set.
func (c *TagCache) Tagged(ctx context.Context, slug string, includeDrafts bool) (tags.Info, []content.Entry, error) {
	snap, infos, err := c.ensureLoaded(ctx)
	if err != nil {
		return tags.Info{}, nil, err
	}
	info, ok := tags.Lookup(infos, slug)
	if !ok {
		return tags.Info{}, nil, ErrNotFound
	}
	// info and entries come from the same snapshot
	entries := content.Visible(tags.Tagged(flatten(snap), info.Tag), includeDrafts)
	content.SortNewest(entries)
	return info, entries, nil
}

func flatten(snap content.MemoryStore) []content.Entry {
	var all []content.Entry
	for _, col := range content.Collections {
		all = append(all, snap[col]...)
	}
	return all
}
