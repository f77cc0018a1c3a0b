package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/auth"
	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
	"github.com/platinummonkey/cadmdt/pkg/rbac"
)

// Dependencies are the collaborators the server is assembled from
type Dependencies struct {
	Checker       rbac.Checker
	Organizations orgs.OrganizationLookup
	Authenticator auth.Authenticator
	Table         *navigation.Table
	Logger        *observability.Logger

	// Optional
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Health   *observability.HealthChecker

	// RateLimiter limits page and API calls. Nil disables rate limiting.
	RateLimiter *middleware.RateLimitMiddleware
	// Audit receives guard denials. Nil discards them.
	Audit audit.Logger
	// Proxies may set X-Forwarded-For. Nil trusts only the peer address.
	Proxies *middleware.ProxyTrust
}

// Server represents our API server
type Server struct {
	deps   Dependencies
	router *mux.Router
}

// NewServer creates a new API server
func NewServer(deps Dependencies) *Server {
	if deps.Table == nil {
		deps.Table = navigation.Default()
	}
	if deps.Logger == nil {
		deps.Logger = observability.GetLogger(context.Background())
	}

	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.Use(
		middleware.RequestID,
		middleware.ClientIPMiddleware(s.deps.Proxies),
		middleware.RequestLogger(s.deps.Logger),
		observability.RecoveryMiddleware,
	)
	if s.deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.deps.Metrics))
	}
	s.router.Use(
		observability.TracingMiddleware("cadmdt"),
		rbac.MemoMiddleware,
	)

	if s.deps.Health != nil {
		observability.RegisterHealthRoutes(s.router, s.deps.Health)
	}
	if s.deps.Registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.deps.Registry)).Methods(http.MethodGet)
	}

	// API callers must authenticate; pages fall through to the guard, which
	// renders its own sign-in message
	api := []func(http.Handler) http.Handler{
		middleware.NewAuthMiddleware(s.deps.Authenticator, false).Handler,
		middleware.OrgContextMiddleware(s.deps.Organizations),
	}
	pages := []func(http.Handler) http.Handler{
		middleware.NewAuthMiddleware(s.deps.Authenticator, true).Handler,
		middleware.OrgContextMiddleware(s.deps.Organizations),
	}
	if s.deps.RateLimiter != nil {
		api = append(api, s.deps.RateLimiter.Handler)
		pages = append(pages, s.deps.RateLimiter.Handler)
	}
	api = append(api,
		httputil.MaxBytesMiddleware(httputil.DefaultMaxBodyBytes),
		httputil.ContentTypeMiddleware,
	)

	NewPermissionHandlers(s.deps.Checker, s.deps.Table, s.deps.Metrics).RegisterRoutes(s.router, httputil.Chain(api...))
	NewPageHandlers(s.deps.Checker, s.deps.Table, s.deps.Metrics).
		WithAudit(s.deps.Audit).
		RegisterRoutes(s.router, httputil.Chain(pages...))
}

// Router exposes the underlying router, e.g. for walking registered routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
