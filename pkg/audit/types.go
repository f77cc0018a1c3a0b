package audit

import (
	"time"
)

// EventType is the category of an audit event
type EventType string

const (
	// EventTypeAccessDenied is a page request the layout guard refused
	EventTypeAccessDenied EventType = "authz.access_denied"
	// EventTypeActionDenied is a mutation the action guard refused
	EventTypeActionDenied EventType = "authz.action_denied"
	// EventTypeCheckFailed is a request denied because permissions could not be resolved
	EventTypeCheckFailed EventType = "authz.check_failed"
)

// Event is one audit log entry
type Event struct {
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"event_type"`

	// Evaluator is the component that decided (guard, action)
	Evaluator string `json:"evaluator"`
	// Decision is the decision state or action name
	Decision string `json:"decision,omitempty"`

	UserID         *int64 `json:"user_id,omitempty"`
	OrganizationID *int64 `json:"organization_id,omitempty"`
	ServerSlug     string `json:"server_slug,omitempty"`

	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	Message string `json:"message,omitempty"`
}

// Fields flattens the event for structured logging
func (e *Event) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"event_type": string(e.EventType),
		"evaluator":  e.Evaluator,
	}
	if e.Decision != "" {
		fields["decision"] = e.Decision
	}
	if e.UserID != nil {
		fields["user_id"] = *e.UserID
	}
	if e.OrganizationID != nil {
		fields["organization_id"] = *e.OrganizationID
	}
	if e.ServerSlug != "" {
		fields["server_slug"] = e.ServerSlug
	}
	if e.Method != "" {
		fields["method"] = e.Method
	}
	if e.Path != "" {
		fields["path"] = e.Path
	}
	if e.RequestID != "" {
		fields["request_id"] = e.RequestID
	}
	if e.IPAddress != "" {
		fields["ip_address"] = e.IPAddress
	}
	return fields
}
