// Package orgs reads organizations, memberships and custom roles for permission
// resolution.
//
// # Overview
//
// An organization is one roleplay community server, addressed in URLs by its slug. Each
// user belongs to an organization through a Member row carrying a base role (owner,
// admin or member) and optionally one custom role. A custom role stores its grants as a
// JSON object of permission name to boolean; parsing that blob is left to the
// permissions package so a malformed value can be handled where access is decided.
//
// This package is read-only. Creating organizations, inviting members and editing
// custom roles are handled elsewhere.
//
// # Usage Example
//
//	svc := orgs.NewSQLService(db)
//	lookup := orgs.NewSlugCache(svc, 1024, 5*time.Minute)
//
//	org, err := lookup.GetOrganizationBySlug(ctx, "acme-rp")
//	if errors.Is(err, orgs.ErrOrganizationNotFound) {
//		// 404
//	}
//
//	member, err := svc.GetMember(ctx, org.ID, userID)
//	if errors.Is(err, orgs.ErrMemberNotFound) {
//		// not a member: no access
//	}
//
// # Slugs
//
// NormalizeSlug lowercases and strips everything outside [a-z0-9-]. Lookups with a slug
// that is not already normalized fail with ErrOrganizationNotFound without touching
// the database.
package orgs
