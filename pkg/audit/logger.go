package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// Logger records audit events
type Logger interface {
	// Log records an event. Implementations must not retain event after returning.
	Log(ctx context.Context, event *Event) error

	// Close flushes buffered events and releases resources
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Log(context.Context, *Event) error { return nil }
func (Nop) Close() error                      { return nil }

// NewRequestEvent builds an event from the request, copying the caller and
// organization set by the auth and organization middleware when present
func NewRequestEvent(r *http.Request, eventType EventType, evaluator, decision string) *Event {
	event := &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Evaluator: evaluator,
		Decision:  decision,
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: observability.GetRequestID(r.Context()),
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	if authCtx := middleware.GetAuthContext(r); authCtx != nil && authCtx.User != nil {
		id := authCtx.User.ID
		event.UserID = &id
	}
	if org := middleware.GetOrganization(r); org != nil {
		id := org.ID
		event.OrganizationID = &id
		event.ServerSlug = org.Slug
	}

	return event
}
