package orgs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetMember retrieves a membership and, when one is attached, its custom role
func (s *SQLService) GetMember(ctx context.Context, orgID, userID int64) (*Member, error) {
	query := `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.custom_role_id,
		       cr.id, cr.name, cr.permissions
		FROM members m
		LEFT JOIN custom_roles cr ON cr.id = m.custom_role_id AND cr.organization_id = m.organization_id
		WHERE m.organization_id = $1 AND m.user_id = $2
	`
	member := &Member{}
	var customRoleID, roleID sql.NullInt64
	var roleName, rolePermissions sql.NullString
	err := s.db.QueryRowContext(ctx, query, orgID, userID).Scan(
		&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &customRoleID,
		&roleID, &roleName, &rolePermissions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if customRoleID.Valid {
		id := customRoleID.Int64
		member.CustomRoleID = &id
	}
	// a dangling or cross-organization reference leaves CustomRole nil
	if roleID.Valid {
		member.CustomRole = &CustomRole{
			ID:             roleID.Int64,
			OrganizationID: member.OrganizationID,
			Name:           roleName.String,
			Permissions:    rolePermissions.String,
		}
	}

	return member, nil
}

// GetCustomRole retrieves a custom role owned by the organization
func (s *SQLService) GetCustomRole(ctx context.Context, orgID, roleID int64) (*CustomRole, error) {
	query := `
		SELECT id, organization_id, name, permissions
		FROM custom_roles
		WHERE organization_id = $1 AND id = $2
	`
	role := &CustomRole{}
	err := s.db.QueryRowContext(ctx, query, orgID, roleID).Scan(
		&role.ID, &role.OrganizationID, &role.Name, &role.Permissions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom role: %w", err)
	}

	return role, nil
}
