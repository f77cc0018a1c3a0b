package orgs

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// SlugCache fronts an OrganizationLookup with a size- and TTL-bounded LRU. Only the
// slug to organization mapping is cached; memberships are always read fresh.
type SlugCache struct {
	next    OrganizationLookup
	cache   *lru.LRU[string, *Organization]
	metrics *observability.Metrics
}

// NewSlugCache wraps next. A non-positive size disables caching.
func NewSlugCache(next OrganizationLookup, size int, ttl time.Duration) *SlugCache {
	c := &SlugCache{next: next}
	if size > 0 {
		c.cache = lru.NewLRU[string, *Organization](size, nil, ttl)
	}
	return c
}

// WithMetrics counts hits and misses under cache_type "org_slug"
func (c *SlugCache) WithMetrics(metrics *observability.Metrics) *SlugCache {
	c.metrics = metrics
	return c
}

// GetOrganizationBySlug returns the cached organization or loads it. Misses and errors
// are not cached, so a newly created organization becomes visible immediately.
func (c *SlugCache) GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	if c.cache != nil {
		org, ok := c.cache.Get(slug)
		c.metrics.RecordCacheLookup("org_slug", ok)
		if ok {
			return org, nil
		}
	}

	org, err := c.next.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(slug, org)
	}
	return org, nil
}

// Invalidate drops a slug, used after an organization is renamed or deactivated
func (c *SlugCache) Invalidate(slug string) {
	if c.cache != nil {
		c.cache.Remove(slug)
	}
}

// Len returns the number of cached entries
func (c *SlugCache) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
