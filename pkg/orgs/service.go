package orgs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLService implements Service over database/sql. Queries use $n placeholders,
// which both lib/pq and go-sqlite3 accept.
type SQLService struct {
	db *sql.DB
}

// NewSQLService creates a new SQLService
func NewSQLService(db *sql.DB) *SQLService {
	return &SQLService{db: db}
}

// GetOrganization retrieves an organization by ID
func (s *SQLService) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	query := `
		SELECT id, name, slug, display_name, is_active
		FROM organizations
		WHERE id = $1
	`
	org := &Organization{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.DisplayName, &org.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetOrganizationBySlug retrieves an active organization by slug
func (s *SQLService) GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	if !ValidSlug(slug) {
		return nil, ErrOrganizationNotFound
	}

	query := `
		SELECT id, name, slug, display_name, is_active
		FROM organizations
		WHERE slug = $1
	`
	org := &Organization{}
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&org.ID, &org.Name, &org.Slug, &org.DisplayName, &org.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if !org.IsActive {
		return nil, ErrOrganizationNotFound
	}

	return org, nil
}

// NormalizeSlug lowercases a name and strips everything but a-z, 0-9 and dashes
func NormalizeSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, slug)
	return slug
}

// ValidSlug reports whether s is already a normalized, non-empty slug
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 255 && NormalizeSlug(s) == s
}
