package rbac

import (
	"net/http"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
	"github.com/platinummonkey/cadmdt/pkg/ui"
)

// NotAMember labels guard denials that happen before the table is consulted
const NotAMember = "NOT_A_MEMBER"

// Guard protects the server-rendered pages under /servers/{serverSlug}
type Guard struct {
	checker Checker
	table   *navigation.Table
	metrics *observability.Metrics
	audit   audit.Logger
}

// NewGuard creates a layout guard. metrics may be nil.
func NewGuard(checker Checker, table *navigation.Table, metrics *observability.Metrics) *Guard {
	return &Guard{
		checker: checker,
		table:   table,
		metrics: metrics,
		audit:   audit.Nop{},
	}
}

// WithAudit records every denial to logger
func (g *Guard) WithAudit(logger audit.Logger) *Guard {
	if logger != nil {
		g.audit = logger
	}
	return g
}

// Middleware decides every request against the navigation table. A denied request
// still gets the page shell, with the unauthorized panel in place of the page and a
// 403 status. Resolution failures are logged and denied the same way. Non-members
// get a bare error page.
// It runs after the auth and organization middleware.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := middleware.GetAuthContext(r)
		org := middleware.GetOrganization(r)
		if authCtx == nil || authCtx.User == nil || org == nil {
			g.metrics.RecordAccessDecision("guard", string(NoPolicyFound))
			ui.RenderHTML(w, http.StatusForbidden, ui.ErrorPage("Unauthorized", "Sign in to view this server."))
			return
		}

		logger := observability.FromContext(r.Context()).WithFields(map[string]interface{}{
			"server_slug": org.Slug,
			"path":        r.URL.Path,
		})

		eff, err := g.checker.Resolve(r.Context(), authCtx.User.ID, org.ID)
		if err != nil {
			logger.WithError(err).Error("Permission resolution failed, denying")
			eff = permissions.None()
			g.metrics.RecordAccessDecision("guard", string(PermissionCheckFailed))
			g.record(r, audit.EventTypeCheckFailed, string(PermissionCheckFailed))
			g.deny(w, r, eff)
			return
		}

		if !eff.IsMember() {
			g.metrics.RecordAccessDecision("guard", NotAMember)
			g.record(r, audit.EventTypeAccessDenied, NotAMember)
			ui.RenderHTML(w, http.StatusForbidden, ui.ErrorPage("Unauthorized", "You are not a member of "+org.Title()+"."))
			return
		}

		decision := Decide(g.table, r.URL.Path, org.Slug, eff)
		g.metrics.RecordAccessDecision("guard", string(decision.State))
		if !decision.Allowed() {
			logger.WithField("decision", string(decision.State)).Debug("Page access denied")
			g.record(r, audit.EventTypeAccessDenied, string(decision.State))
			g.deny(w, r, eff)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) record(r *http.Request, eventType audit.EventType, decision string) {
	if err := g.audit.Log(r.Context(), audit.NewRequestEvent(r, eventType, "guard", decision)); err != nil {
		observability.FromContext(r.Context()).WithError(err).Warn("Failed to record audit event")
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, eff permissions.Effective) {
	org := middleware.GetOrganization(r)
	ui.RenderHTML(w, http.StatusForbidden, ui.Page(ui.PageData{
		Title:      "Unauthorized",
		ServerName: org.Title(),
		ServerSlug: org.Slug,
		UserName:   middleware.GetAuthContext(r).User.Name(),
		ActivePath: r.URL.Path,
		Groups:     Navigation(g.table, org.Slug, eff, g.metrics),
	}, ui.Unauthorized(r.URL.Path)))
}
