// Package rbac resolves what a member may do inside a server and enforces it.
//
// # Resolution
//
// A Resolver turns a membership into permissions.Effective: owners and admins are
// power users, members get the true keys of their custom role, everyone else gets
// nothing. Malformed custom roles are logged and resolve to nothing; only database
// failures are returned as errors.
//
//	resolver := rbac.NewResolver(orgs.NewSQLService(db), metrics)
//	eff, err := resolver.Resolve(ctx, userID, orgID)
//
// Within one request, wrap the context with WithMemo (or mount MemoMiddleware) so the
// guard, the sidebar and handlers share a single lookup.
//
// # Decisions
//
// Decide is the one access policy. States are evaluated in order:
//
//	POWER_USER_BYPASS        allow
//	NO_POLICY_FOUND          deny, the path has no navigation entry
//	UNRESTRICTED_POLICY      allow
//	PERMISSION_CHECK_PASSED  allow
//	PERMISSION_CHECK_FAILED  deny
//
// Guard.Middleware applies it to the server pages and Navigation applies it to each
// sidebar link, so a link is shown exactly when its page would render.
//
// # Actions
//
// Mutations re-check on the server before running:
//
//	guard := rbac.NewActionGuard(resolver, metrics)
//	router.Handle("/api/servers/{serverSlug}/citizens", guard.RequireNamed("createCitizen")(createHandler))
//	if err := guard.Authorize(ctx, userID, orgID, rbac.Actions["editFine"]); errors.Is(err, rbac.ErrForbidden) { ... }
package rbac
