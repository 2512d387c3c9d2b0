package folio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("folio: not found")

// Snapshot is one consistent read of all three collections.
type Snapshot struct {
	Posts        []content.Post
	Photos       []content.Photo
	Publications []content.Publication
}

func seedSnapshot(s content.Seed) Snapshot {
	return Snapshot{Posts: s.Posts, Photos: s.Photos, Publications: s.Publications}
}

// ContentCache is an in-memory TTL cache of everything the public pages show.
// When there is no store, or the store fails, readers get the seed content
// instead. The seed is never cached, so the next read retries the store.
type ContentCache struct {
	mu      sync.RWMutex
	snap    *Snapshot
	fetched time.Time
	ttl     time.Duration
	store   content.Store
	seed    content.Seed
	logger  echo.Logger
}

// NewContentCache creates a ContentCache backed by st, which may be nil.
func NewContentCache(st content.Store, seed content.Seed, ttl time.Duration, logger echo.Logger) *ContentCache {
	return &ContentCache{store: st, seed: seed, ttl: ttl, logger: logger}
}

func (c *ContentCache) valid() bool {
	return c.snap != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *ContentCache) load(ctx context.Context) (Snapshot, error) {
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list posts: %w", err)
	}
	photos, err := c.store.ListPhotos(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list photos: %w", err)
	}
	pubs, err := c.store.ListPublications(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list publications: %w", err)
	}
	return Snapshot{Posts: posts, Photos: photos, Publications: pubs}, nil
}

// Snapshot returns the cached content, reloading it when stale.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) Snapshot(ctx context.Context) Snapshot {
	if c.store == nil {
		return seedSnapshot(c.seed)
	}

	c.mu.RLock()
	if c.valid() {
		snap := *c.snap
		c.mu.RUnlock()
		return snap
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return *c.snap
	}
	snap, err := c.load(ctx)
	if err != nil {
		c.logger.Warnf("content store unavailable, serving seed content: %v", err)
		return seedSnapshot(c.seed)
	}
	c.snap = &snap
	c.fetched = time.Now()
	return snap
}

// Post returns a single post by id.
func (c *ContentCache) Post(ctx context.Context, id string) (content.Post, error) {
	for _, p := range c.Snapshot(ctx).Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}

// Photo returns a single photo by id.
func (c *ContentCache) Photo(ctx context.Context, id string) (content.Photo, error) {
	for _, p := range c.Snapshot(ctx).Photos {
		if p.ID == id {
			return p, nil
		}
	}
	return content.Photo{}, ErrNotFound
}
