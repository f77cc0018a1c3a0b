package middleware

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/cadmdt/pkg/contextkeys"
	"github.com/platinummonkey/cadmdt/pkg/httputil"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
)

// SlugVar is the mux route variable naming the organization
const SlugVar = "serverSlug"

// OrgContextMiddleware resolves the {serverSlug} route variable to an organization and
// adds it to the request context. Unknown or inactive slugs get a 404.
func OrgContextMiddleware(lookup orgs.OrganizationLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, ok := mux.Vars(r)[SlugVar]
			if !ok {
				// No organization context needed
				next.ServeHTTP(w, r)
				return
			}

			org, err := lookup.GetOrganizationBySlug(r.Context(), slug)
			if errors.Is(err, orgs.ErrOrganizationNotFound) {
				httputil.WriteNotFoundError(w, "Organization not found")
				return
			}
			if err != nil {
				observability.FromContext(r.Context()).
					WithField("server_slug", slug).
					WithError(err).
					Error("Organization lookup failed")
				httputil.WriteInternalError(w, errors.New("organization lookup failed"))
				return
			}

			observability.AnnotateServer(r.Context(), org.Slug)
			ctx := contextkeys.WithOrg(r.Context(), org)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOrganization returns the organization resolved by OrgContextMiddleware
func GetOrganization(r *http.Request) *orgs.Organization {
	org, _ := r.Context().Value(contextkeys.OrgKey).(*orgs.Organization)
	return org
}
