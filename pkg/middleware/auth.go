package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/platinummonkey/cadmdt/pkg/auth"
	"github.com/platinummonkey/cadmdt/pkg/contextkeys"
	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// SessionCookie carries the bearer token for browser page requests
const SessionCookie = "cadmdt_session"

// AuthMiddleware provides authentication middleware
type AuthMiddleware struct {
	authenticator auth.Authenticator
	optional      bool // If true, allow requests without auth
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authenticator auth.Authenticator, optional bool) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		optional:      optional,
	}
}

// Handler wraps an HTTP handler with authentication. The token comes from the
// Authorization header ("Bearer <token>") or, failing that, the session cookie.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			httputil.WriteUnauthorized(w, err.Error())
			return
		}
		if token == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		authCtx, err := m.authenticator.Authenticate(r.Context(), token)
		if errors.Is(err, auth.ErrInvalidToken) {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("Token lookup failed")
			httputil.WriteServiceUnavailable(w, "authentication unavailable")
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(authCtx.UserID(), 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value, nil
	}
	return "", nil
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	authCtx, _ := r.Context().Value(contextkeys.AuthKey).(*auth.AuthContext)
	return authCtx
}

// RequireAuth rejects requests that reached it without an authenticated user
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authCtx := GetAuthContext(r); authCtx == nil || authCtx.User == nil {
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
