package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/rbac"
	"github.com/platinummonkey/cadmdt/pkg/ui"
)

// DashboardPath is where the bare server URL sends people
const DashboardPath = "/dashboard"

// PageHandlers renders the server layout around CAD pages
type PageHandlers struct {
	checker rbac.Checker
	guard   *rbac.Guard
	table   *navigation.Table
	metrics *observability.Metrics
}

// NewPageHandlers creates page handlers that share guard's checker and table
func NewPageHandlers(checker rbac.Checker, table *navigation.Table, metrics *observability.Metrics) *PageHandlers {
	return &PageHandlers{
		checker: checker,
		guard:   rbac.NewGuard(checker, table, metrics),
		table:   table,
		metrics: metrics,
	}
}

// WithAudit sends the guard's denials to logger
func (h *PageHandlers) WithAudit(logger audit.Logger) *PageHandlers {
	h.guard.WithAudit(logger)
	return h
}

// RegisterRoutes registers the page routes. wrap must add auth and organization
// context; the layout guard is applied here.
func (h *PageHandlers) RegisterRoutes(router *mux.Router, wrap func(http.Handler) http.Handler) {
	root := wrap(http.HandlerFunc(h.Root))
	router.Handle("/servers/{serverSlug}", root).Methods(http.MethodGet)
	router.Handle("/servers/{serverSlug}/", root).Methods(http.MethodGet)
	router.Handle("/servers/{serverSlug}/{rest:.+}", wrap(h.guard.Middleware(http.HandlerFunc(h.Page)))).Methods(http.MethodGet)
}

// Root redirects /servers/{serverSlug} to the dashboard
func (h *PageHandlers) Root(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)[middleware.SlugVar]
	http.Redirect(w, r, "/servers/"+slug+DashboardPath, http.StatusFound)
}

// Page renders the shell with the filtered sidebar. The guard has already allowed
// the path, so the resolution here comes from the request memo.
func (h *PageHandlers) Page(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	org := middleware.GetOrganization(r)

	eff, err := h.checker.Resolve(r.Context(), authCtx.User.ID, org.ID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("Permission resolution failed")
		ui.RenderHTML(w, http.StatusInternalServerError, ui.ErrorPage("Error", "Something went wrong loading this page."))
		return
	}

	title := org.Title()
	if link, ok := h.table.Match(r.URL.Path, org.Slug); ok {
		title = link.Label
	}

	ui.RenderHTML(w, http.StatusOK, ui.Page(ui.PageData{
		Title:      title,
		ServerName: org.Title(),
		ServerSlug: org.Slug,
		UserName:   authCtx.User.Name(),
		ActivePath: r.URL.Path,
		Groups:     rbac.Navigation(h.table, org.Slug, eff, h.metrics),
	}, ui.PagePlaceholder(title, r.URL.Path)))
}
