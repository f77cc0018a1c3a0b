// Package navigation holds the route and navigation access table for the server
// pages under /servers/{serverSlug}.
//
// The table is an ordered list of sidebar groups. Each link carries a templated href
// and an optional requirement: a list of base roles, a list of permissions with an
// AND/OR mode, both, or neither. The same table answers two questions:
//
//   - which links the sidebar shows (Filter), and
//   - which requirement applies to an arbitrary page path (FindRequiredAccess).
//
// A path matches a link when it equals the link path or lies beneath it. The first
// match in table order wins, and Validate rejects any link that an earlier, shorter
// link would shadow. A path that matches nothing has no declared policy; callers
// treat that as a denial.
//
// The built-in table is embedded from table.yaml and validated once on first use:
//
//	table := navigation.Default()
//	access, ok := table.FindRequiredAccess("/servers/acme/citizens/42", "acme")
//	if ok && access.Allows(eff) {
//		// render
//	}
package navigation
