package navigation

import "github.com/platinummonkey/cadmdt/pkg/permissions"

// Unrestricted reports whether the entry declares neither roles nor permissions
func (a *Access) Unrestricted() bool {
	return len(a.Roles) == 0 && len(a.Permissions) == 0
}

// Allows evaluates the requirement against a resolved permission set
func (a *Access) Allows(eff permissions.Effective) bool {
	if eff.IsPowerUser || a.Unrestricted() {
		return true
	}
	if len(a.Roles) > 0 && eff.HasRole(a.Roles...) {
		return true
	}
	return len(a.Permissions) > 0 && permissions.Satisfies(a.Permissions, a.mode(), eff)
}

func (a *Access) mode() permissions.Mode {
	if a.Mode == "" {
		return permissions.ModeOr
	}
	return a.Mode
}
