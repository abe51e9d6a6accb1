package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/streamia/backend/internal/models"
)

// Lister returns the category catalog.
type Lister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CachingLister wraps another Lister with a TTL-based in-memory cache.
// Category rows change rarely and back every catalog page load.
type CachingLister struct {
	base Lister
	ttl  time.Duration

	mu      sync.RWMutex
	cached  []models.Category
	expires time.Time
}

// NewCachingLister returns a Lister that caches lookups for the provided TTL.
func NewCachingLister(base Lister, ttl time.Duration) *CachingLister {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingLister{base: base, ttl: ttl}
}

// ListCategories returns cached categories when fresh, otherwise delegates to
// the underlying lister and stores the result.
func (c *CachingLister) ListCategories(ctx context.Context) ([]models.Category, error) {
	now := time.Now()

	c.mu.RLock()
	cached, expires := c.cached, c.expires
	c.mu.RUnlock()
	if cached != nil && now.Before(expires) {
		return cached, nil
	}

	categories, err := c.base.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cached = categories
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()

	return categories, nil
}

// Invalidate drops the cached listing. Mutating handlers call it so newly
// created categories appear immediately.
func (c *CachingLister) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.expires = time.Time{}
	c.mu.Unlock()
}
