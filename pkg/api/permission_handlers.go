package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
	"github.com/platinummonkey/cadmdt/pkg/rbac"
)

// PermissionHandlers serves the check-permission endpoints used by client gates
type PermissionHandlers struct {
	checker rbac.Checker
	table   *navigation.Table
	metrics *observability.Metrics
}

// NewPermissionHandlers creates permission handlers. metrics may be nil.
func NewPermissionHandlers(checker rbac.Checker, table *navigation.Table, metrics *observability.Metrics) *PermissionHandlers {
	return &PermissionHandlers{
		checker: checker,
		table:   table,
		metrics: metrics,
	}
}

// RegisterRoutes registers the endpoints on router. Both expect the auth and
// organization middleware to have run.
func (h *PermissionHandlers) RegisterRoutes(router *mux.Router, wrap func(http.Handler) http.Handler) {
	router.Handle("/api/servers/{serverSlug}/check-permission", wrap(http.HandlerFunc(h.CheckPermission))).Methods(http.MethodPost)
	router.Handle("/api/servers/{serverSlug}/check-permission/user-permissions", wrap(http.HandlerFunc(h.UserPermissions))).Methods(http.MethodGet)
}

// resolve returns the caller's effective permissions, writing the error response
// itself when it returns false
func (h *PermissionHandlers) resolve(w http.ResponseWriter, r *http.Request) (permissions.Effective, bool) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil || authCtx.User == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return permissions.None(), false
	}
	org := middleware.GetOrganization(r)
	if org == nil {
		httputil.WriteNotFoundError(w, "Organization not found")
		return permissions.None(), false
	}

	eff, err := h.checker.Resolve(r.Context(), authCtx.User.ID, org.ID)
	if err != nil {
		observability.FromContext(r.Context()).
			WithField("server_slug", org.Slug).
			WithError(err).
			Error("Permission resolution failed")
		httputil.WriteInternalError(w, err)
		return permissions.None(), false
	}
	return eff, true
}

// CheckPermission handles POST /api/servers/{serverSlug}/check-permission
func (h *PermissionHandlers) CheckPermission(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	mode, err := permissions.ParseMode(req.Mode)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	eff, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if mode == permissions.ModeBulk {
		results := make(map[string]bool, len(req.Permissions))
		for _, p := range req.Permissions.Permissions() {
			results[string(p)] = eff.IsMember() && permissions.SatisfiesOne(p, eff)
		}
		h.metrics.RecordPermissionCheck(string(mode), "bulk")
		httputil.WriteSuccess(w, BulkCheckResponse{Results: results})
		return
	}

	granted := eff.IsMember() && permissions.Satisfies(req.Permissions.Permissions(), mode, eff)
	h.metrics.RecordPermissionCheck(string(mode), result(granted))
	httputil.WriteSuccess(w, CheckResponse{Granted: granted})
}

// UserPermissions handles GET /api/servers/{serverSlug}/check-permission/user-permissions
func (h *PermissionHandlers) UserPermissions(w http.ResponseWriter, r *http.Request) {
	eff, ok := h.resolve(w, r)
	if !ok {
		return
	}
	org := middleware.GetOrganization(r)

	httputil.WriteSuccess(w, UserPermissionsResponse{
		Permissions: eff.List(),
		IsPowerUser: eff.IsPowerUser,
		Navigation:  rbac.Navigation(h.table, org.Slug, eff, h.metrics),
	})
}

func result(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}
