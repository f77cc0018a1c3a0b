package rbac

import (
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// DecisionState names how an access decision was reached
type DecisionState string

const (
	PowerUserBypass       DecisionState = "POWER_USER_BYPASS"
	NoPolicyFound         DecisionState = "NO_POLICY_FOUND"
	UnrestrictedPolicy    DecisionState = "UNRESTRICTED_POLICY"
	PermissionCheckPassed DecisionState = "PERMISSION_CHECK_PASSED"
	PermissionCheckFailed DecisionState = "PERMISSION_CHECK_FAILED"
)

// Allowed reports whether the state lets the request through
func (s DecisionState) Allowed() bool {
	switch s {
	case PowerUserBypass, UnrestrictedPolicy, PermissionCheckPassed:
		return true
	default:
		return false
	}
}

// Decision is the outcome of evaluating one path
type Decision struct {
	State DecisionState
	// Access is the matched requirement, nil for bypass and no policy
	Access *navigation.Access
}

// Allowed reports whether the decision lets the request through
func (d Decision) Allowed() bool {
	return d.State.Allowed()
}

// Decide is the single access policy shared by the page guard, the sidebar and the
// user-permissions endpoint. Power users bypass the table; a path with no table entry
// is denied.
func Decide(table *navigation.Table, path, slug string, eff permissions.Effective) Decision {
	if eff.IsPowerUser {
		return Decision{State: PowerUserBypass}
	}

	access, ok := table.FindRequiredAccess(path, slug)
	if !ok {
		return Decision{State: NoPolicyFound}
	}
	if access.Unrestricted() {
		return Decision{State: UnrestrictedPolicy, Access: access}
	}
	if access.Allows(eff) {
		return Decision{State: PermissionCheckPassed, Access: access}
	}
	return Decision{State: PermissionCheckFailed, Access: access}
}

// Navigation returns the sidebar for eff: every link whose own path passes Decide.
// Non-members get no links.
func Navigation(table *navigation.Table, slug string, eff permissions.Effective, metrics *observability.Metrics) []navigation.Group {
	if !eff.IsMember() {
		return []navigation.Group{}
	}
	return table.Filter(slug, func(path string) bool {
		d := Decide(table, path, slug, eff)
		metrics.RecordAccessDecision("sidebar", string(d.State))
		return d.Allowed()
	})
}
