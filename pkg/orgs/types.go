package orgs

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

var (
	// ErrOrganizationNotFound is returned when no organization matches the lookup
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrMemberNotFound is returned when the user has no membership in the organization
	ErrMemberNotFound = errors.New("member not found")

	// ErrCustomRoleNotFound is returned when a custom role does not exist in the organization
	ErrCustomRoleNotFound = errors.New("custom role not found")
)

// Organization is a tenant, usually one roleplay game server
type Organization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

// Title returns the display name, falling back to the name
func (o *Organization) Title() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Name
}

// CustomRole is an organization-scoped bundle of permission grants.
// Permissions holds the stored JSON object of permission name to boolean.
type CustomRole struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
	Permissions    string `json:"permissions"`
}

// Member joins a user to an organization
type Member struct {
	ID             int64            `json:"id"`
	OrganizationID int64            `json:"organization_id"`
	UserID         int64            `json:"user_id"`
	Role           permissions.Role `json:"role"`
	CustomRoleID   *int64           `json:"custom_role_id,omitempty"`
	CustomRole     *CustomRole      `json:"custom_role,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// OrganizationLookup resolves the organization addressed by a request
type OrganizationLookup interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*Organization, error)
}

// MemberLookup loads a membership together with its custom role
type MemberLookup interface {
	GetMember(ctx context.Context, orgID, userID int64) (*Member, error)
}

// Service is the read side of organization membership. Writes belong to the settings
// area and are not part of this service.
type Service interface {
	OrganizationLookup
	MemberLookup

	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	GetCustomRole(ctx context.Context, orgID, roleID int64) (*CustomRole, error)
}
