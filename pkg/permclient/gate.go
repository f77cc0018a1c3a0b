package permclient

import (
	"context"
	"errors"
	"sync"

	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// State is where a gate is in its check
type State int

const (
	Pending State = iota
	Granted
	Denied
)

func (s State) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// ErrBulkMode is returned when a gate is asked to use BULK, which only the provider uses
var ErrBulkMode = errors.New("gates accept AND or OR, not BULK")

// Outcome tells the caller what to show for a gate
type Outcome struct {
	State State
	// Redirect is set when access is denied and the gate has a redirect target
	Redirect string
	// Fallback is set when access is denied without a redirect and a fallback was given
	Fallback bool
}

// ShowContent reports whether the gated content may be shown
func (o Outcome) ShowContent() bool {
	return o.State == Granted
}

// Gate guards one piece of content behind a single permission check. While pending
// nothing is shown. Any failure denies.
type Gate struct {
	client      *Client
	slug        string
	permissions []permissions.Permission
	mode        permissions.Mode
	redirect    string
	fallback    bool

	mu    sync.Mutex
	state State
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithRedirect sends denied users to target instead of showing anything
func WithRedirect(target string) GateOption {
	return func(g *Gate) {
		g.redirect = target
	}
}

// WithFallback shows the caller's fallback content on denial
func WithFallback() GateOption {
	return func(g *Gate) {
		g.fallback = true
	}
}

// NewGate creates a gate for perms under mode. An empty mode means OR.
func NewGate(client *Client, slug string, perms []permissions.Permission, mode permissions.Mode, opts ...GateOption) (*Gate, error) {
	if mode == "" {
		mode = permissions.ModeOr
	}
	if mode == permissions.ModeBulk {
		return nil, ErrBulkMode
	}

	g := &Gate{
		client:      client,
		slug:        slug,
		permissions: perms,
		mode:        mode,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check performs one request and settles the gate. Each call is a new request.
func (g *Gate) Check(ctx context.Context) Outcome {
	g.mu.Lock()
	g.state = Pending
	g.mu.Unlock()

	granted, err := g.client.Check(ctx, g.slug, g.permissions, g.mode)
	if err != nil {
		g.client.log(ctx).
			WithField("server_slug", g.slug).
			WithField("permissions", g.permissions).
			WithError(err).
			Warn("Permission check failed, denying")
	}

	state := Denied
	if err == nil && granted {
		state = Granted
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
	return g.Outcome()
}

// Outcome reports the gate's current outcome
func (g *Gate) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := Outcome{State: g.state}
	if g.state != Denied {
		return out
	}
	if g.redirect != "" {
		out.Redirect = g.redirect
		return out
	}
	out.Fallback = g.fallback
	return out
}
