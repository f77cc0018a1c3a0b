package permissions

// Effective is the resolved permission state of one member in one organization
type Effective struct {
	// Role is the member's base role, empty for non-members
	Role        Role
	IsPowerUser bool
	Permissions Set
}

// None is the fail-closed result used for non-members and lookup failures
func None() Effective {
	return Effective{Permissions: Set{}}
}

// PowerUser is the result for owners and admins
func PowerUser(role Role) Effective {
	return Effective{Role: role, IsPowerUser: true, Permissions: NewSet(Administrator)}
}

// IsMember reports whether the result belongs to a member of the organization
func (e Effective) IsMember() bool {
	return e.Role != ""
}

// HasRole reports whether the member's base role is one of roles
func (e Effective) HasRole(roles ...Role) bool {
	if e.Role == "" {
		return false
	}
	for _, r := range roles {
		if r == e.Role {
			return true
		}
	}
	return false
}

// Unconstrained reports whether every permission is implicitly granted
func (e Effective) Unconstrained() bool {
	return e.IsPowerUser || e.Permissions.Has(Administrator)
}

// Has reports whether the permission is granted
func (e Effective) Has(p Permission) bool {
	return SatisfiesOne(p, e)
}

// List returns the granted permissions in a stable order. Unconstrained results list
// the whole vocabulary.
func (e Effective) List() []Permission {
	if e.Unconstrained() {
		return All()
	}
	return e.Permissions.Sorted()
}

// SatisfiesOne is the single-permission membership test
func SatisfiesOne(p Permission, eff Effective) bool {
	if eff.Unconstrained() {
		return true
	}
	return eff.Permissions.Has(p)
}

// Satisfies reports whether eff meets the required permissions under mode.
// An empty requirement is always met; any mode other than AND behaves as OR.
func Satisfies(required []Permission, mode Mode, eff Effective) bool {
	if eff.Unconstrained() || len(required) == 0 {
		return true
	}

	if mode == ModeAnd {
		for _, p := range required {
			if !eff.Permissions.Has(p) {
				return false
			}
		}
		return true
	}

	for _, p := range required {
		if eff.Permissions.Has(p) {
			return true
		}
	}
	return false
}
