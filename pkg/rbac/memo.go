package rbac

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/platinummonkey/cadmdt/pkg/contextkeys"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// memo holds the resolutions of a single request. Concurrent callers asking for the
// same key share one lookup; failed lookups are not remembered.
type memo struct {
	group   singleflight.Group
	mu      sync.Mutex
	results map[string]permissions.Effective
}

func memoKey(userID, orgID int64) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(orgID, 10)
}

func (m *memo) do(userID, orgID int64, fn func() (permissions.Effective, error)) (permissions.Effective, error) {
	key := memoKey(userID, orgID)

	m.mu.Lock()
	if eff, ok := m.results[key]; ok {
		m.mu.Unlock()
		return eff, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		// a previous flight may have finished between the check above and Do
		m.mu.Lock()
		eff, ok := m.results[key]
		m.mu.Unlock()
		if ok {
			return eff, nil
		}

		eff, err := fn()
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.results[key] = eff
		m.mu.Unlock()
		return eff, nil
	})
	if err != nil {
		return permissions.None(), err
	}
	return v.(permissions.Effective), nil
}

// WithMemo returns a context in which Resolver.Resolve remembers its results.
// The memo lives exactly as long as the context.
func WithMemo(ctx context.Context) context.Context {
	if memoFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.ResolutionMemoKey, &memo{
		results: make(map[string]permissions.Effective),
	})
}

func memoFrom(ctx context.Context) *memo {
	m, _ := ctx.Value(contextkeys.ResolutionMemoKey).(*memo)
	return m
}

// MemoMiddleware gives every request its own resolution memo
func MemoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithMemo(r.Context())))
	})
}
