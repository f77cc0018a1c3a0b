// Package api assembles the HTTP surface: the check-permission endpoints consumed
// by client gates, the guarded server pages, and the operational routes.
//
//	POST /api/servers/{serverSlug}/check-permission
//	GET  /api/servers/{serverSlug}/check-permission/user-permissions
//	GET  /servers/{serverSlug}              redirects to the dashboard
//	GET  /servers/{serverSlug}/{rest}       guarded page shell
//	GET  /healthz, /readyz, /metrics
//
// Every access decision goes through rbac.Decide or permissions.Satisfies, so the
// page guard, the sidebar and the endpoints cannot disagree.
package api
