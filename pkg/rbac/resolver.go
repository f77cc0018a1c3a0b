package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// Checker resolves the effective permissions of a user in an organization
type Checker interface {
	Resolve(ctx context.Context, userID, orgID int64) (permissions.Effective, error)
}

// Resolution outcomes, used as the metrics label
const (
	OutcomeNotMember    = "not_member"
	OutcomePowerUser    = "power_user"
	OutcomeCustomRole   = "custom_role"
	OutcomeNoCustomRole = "no_custom_role"
	OutcomeMalformed    = "malformed"
	OutcomeError        = "error"
)

// Resolver implements Checker on top of the membership store
type Resolver struct {
	members orgs.MemberLookup
	metrics *observability.Metrics
}

// NewResolver creates a resolver. metrics may be nil.
func NewResolver(members orgs.MemberLookup, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		members: members,
		metrics: metrics,
	}
}

// Resolve returns the member's effective permissions. A non-member, a member without a
// custom role and a malformed custom role all resolve to the empty set without error.
// Only store failures are returned. Inside a context prepared with WithMemo the result
// is computed once per (user, organization).
func (r *Resolver) Resolve(ctx context.Context, userID, orgID int64) (permissions.Effective, error) {
	if m := memoFrom(ctx); m != nil {
		return m.do(userID, orgID, func() (permissions.Effective, error) {
			return r.resolve(ctx, userID, orgID)
		})
	}
	return r.resolve(ctx, userID, orgID)
}

func (r *Resolver) resolve(ctx context.Context, userID, orgID int64) (permissions.Effective, error) {
	start := time.Now()
	eff, outcome, err := r.lookup(ctx, userID, orgID)
	r.metrics.RecordResolution(outcome, time.Since(start))
	return eff, err
}

func (r *Resolver) lookup(ctx context.Context, userID, orgID int64) (permissions.Effective, string, error) {
	logger := observability.FromContext(ctx).WithFields(map[string]interface{}{
		"member_user_id":  userID,
		"organization_id": orgID,
	})

	member, err := r.members.GetMember(ctx, orgID, userID)
	if errors.Is(err, orgs.ErrMemberNotFound) {
		logger.Debug("User is not a member of the organization")
		return permissions.None(), OutcomeNotMember, nil
	}
	if err != nil {
		return permissions.None(), OutcomeError, fmt.Errorf("failed to load membership: %w", err)
	}

	if member.Role.IsPowerUser() {
		return permissions.PowerUser(member.Role), OutcomePowerUser, nil
	}

	eff := permissions.None()
	eff.Role = member.Role

	if member.CustomRole == nil {
		if member.CustomRoleID != nil {
			logger.WithField("custom_role_id", *member.CustomRoleID).Warn("Member references a missing custom role")
		}
		return eff, OutcomeNoCustomRole, nil
	}

	granted, unknown, err := permissions.ParseGrants(member.CustomRole.Permissions)
	logger = logger.WithField("custom_role_id", member.CustomRole.ID)
	if err != nil {
		logger.WithError(err).Warn("Custom role has malformed permissions, treating as empty")
		return eff, OutcomeMalformed, nil
	}
	if len(unknown) > 0 {
		logger.WithField("unknown_permissions", unknown).Warn("Custom role grants unknown permissions, ignoring them")
	}

	eff.Permissions = granted
	return eff, OutcomeCustomRole, nil
}
