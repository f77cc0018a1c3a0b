// Package middleware provides the HTTP middleware in front of the CAD/MDT routes.
//
// # Middleware Components
//
// RequestID and RequestLogger: request correlation
//
//	router.Use(middleware.RequestID, middleware.RequestLogger(logger))
//
// AuthMiddleware: bearer token or session cookie authentication
//
//	authn := middleware.NewAuthMiddleware(auth.NewTokenStore(db), false)
//	router.Use(authn.Handler)
//	// 401 when the token is missing, malformed, revoked or expired
//
// OrgContextMiddleware: resolves {serverSlug} to an organization
//
//	router.Use(middleware.OrgContextMiddleware(orgs.NewSlugCache(store, 512, time.Minute)))
//	org := middleware.GetOrganization(r)
//
// RateLimitMiddleware: per-user token buckets (golang.org/x/time/rate), or a
// Redis fixed window shared across instances
//
//	limiter := middleware.NewRateLimitMiddleware(
//		middleware.NewDistributedRateLimiter(redisClient, middleware.PerUserRateLimitConfig(), ""),
//		middleware.NewRateLimiter(nil),
//		metrics, "redis")
//	router.Use(limiter.Handler)
//
// Limiter failures fail open; the organization and auth checks fail closed.
package middleware
