// Package permissions defines the CAD/MDT role and permission vocabulary and the pure
// satisfaction rules every access evaluator shares.
//
// # Roles
//
//	owner   - power user, implicit access to everything
//	admin   - power user, implicit access to everything
//	member  - access limited to the grants of an attached custom role
//
// # Permissions
//
// Permissions are opaque identifiers from a closed vocabulary (VIEW_CITIZEN,
// EDIT_FINE, ...). ADMINISTRATOR is a sentinel meaning every permission is granted.
// There is no other hierarchy or wildcard.
//
// # Custom role grants
//
// Custom roles store grants as a JSON object of permission to boolean:
//
//	grants, unknown, err := permissions.ParseGrants(`{"VIEW_FINE": true, "EDIT_FINE": false}`)
//	// grants = {VIEW_FINE}
//
// # Satisfaction
//
//	eff := permissions.Effective{Permissions: grants}
//	permissions.Satisfies([]permissions.Permission{permissions.ViewFine, permissions.EditFine}, permissions.ModeOr, eff)  // true
//	permissions.Satisfies([]permissions.Permission{permissions.ViewFine, permissions.EditFine}, permissions.ModeAnd, eff) // false
package permissions
