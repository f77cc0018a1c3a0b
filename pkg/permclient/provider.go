package permclient

import (
	"context"
	"maps"
	"sync"

	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// Provider loads a fixed list of permissions with one bulk request and answers Has
// from that result for the rest of the page's life
type Provider struct {
	client      *Client
	slug        string
	permissions []permissions.Permission

	mu      sync.RWMutex
	loading bool
	results map[permissions.Permission]bool
}

// NewProvider creates a provider. It starts out loading.
func NewProvider(client *Client, slug string, perms []permissions.Permission) *Provider {
	return &Provider{
		client:      client,
		slug:        slug,
		permissions: perms,
		loading:     true,
		results:     map[permissions.Permission]bool{},
	}
}

// Load performs the bulk request. On failure every permission is denied.
func (p *Provider) Load(ctx context.Context) {
	results, err := p.client.CheckBulk(ctx, p.slug, p.permissions)
	if err != nil {
		p.client.log(ctx).
			WithField("server_slug", p.slug).
			WithError(err).
			Warn("Bulk permission check failed, denying all")
		results = make(map[permissions.Permission]bool, len(p.permissions))
		for _, perm := range p.permissions {
			results[perm] = false
		}
	}

	p.mu.Lock()
	p.results = results
	p.loading = false
	p.mu.Unlock()
}

// Loading reports whether Load has not finished yet
func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Has reports whether perm was granted. It is false while loading and for
// permissions outside the provider's list.
func (p *Provider) Has(perm permissions.Permission) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.loading && p.results[perm]
}

// Results returns a copy of the loaded results
func (p *Provider) Results() map[permissions.Permission]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.results)
}
