package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// DBLogger writes events to the access_audit table
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database audit logger. The table comes from the storage
// migrations.
func NewDBLogger(db *sql.DB) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &DBLogger{db: db}, nil
}

// Log inserts the event and sets its ID
func (l *DBLogger) Log(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO access_audit (
			timestamp, event_type, evaluator, decision,
			user_id, organization_id, server_slug,
			method, path, request_id, ip_address, user_agent, message
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $11, $12, $13
		) RETURNING id
	`

	err := l.db.QueryRowContext(ctx, query,
		event.Timestamp, event.EventType, event.Evaluator, event.Decision,
		event.UserID, event.OrganizationID, event.ServerSlug,
		event.Method, event.Path, event.RequestID, event.IPAddress, event.UserAgent, event.Message,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events for the organization, newest first
func (l *DBLogger) Recent(ctx context.Context, organizationID int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, timestamp, event_type, evaluator, decision,
		       user_id, organization_id, server_slug,
		       method, path, request_id, ip_address, user_agent, message
		FROM access_audit
		WHERE organization_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			userID sql.NullInt64
			orgID  sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.EventType, &e.Evaluator, &e.Decision,
			&userID, &orgID, &e.ServerSlug,
			&e.Method, &e.Path, &e.RequestID, &e.IPAddress, &e.UserAgent, &e.Message,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		if orgID.Valid {
			e.OrganizationID = &orgID.Int64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close is a no-op; the caller owns db
func (l *DBLogger) Close() error {
	return nil
}
