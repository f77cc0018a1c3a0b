package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/auth"
	"github.com/platinummonkey/cadmdt/pkg/contextkeys"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

type fakeChecker struct {
	effective map[int64]permissions.Effective
	err       error
}

func (f *fakeChecker) Resolve(_ context.Context, userID, _ int64) (permissions.Effective, error) {
	if f.err != nil {
		return permissions.None(), f.err
	}
	eff, ok := f.effective[userID]
	if !ok {
		return permissions.None(), nil
	}
	return eff, nil
}

var acme = &orgs.Organization{ID: testOrgID, Slug: "acme", Name: "acme", DisplayName: "Acme RP", IsActive: true}

func requestAs(method, path string, userID int64) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := contextkeys.WithAuth(req.Context(), &auth.AuthContext{User: &auth.User{ID: userID, Username: "unit-7"}})
	ctx = contextkeys.WithOrg(ctx, acme)
	return req.WithContext(ctx)
}

func TestGuard_Middleware(t *testing.T) {
	checker := &fakeChecker{effective: map[int64]permissions.Effective{
		1: permissions.PowerUser(permissions.RoleAdmin),
		2: custom(permissions.ViewCitizen),
	}}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	guard := NewGuard(checker, navigation.Default(), metrics)

	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("page body"))
	}))

	tests := []struct {
		name        string
		userID      int64
		path        string
		wantStatus  int
		wantContain string
	}{
		{"admin on owner-only page", 1, "/servers/acme/settings/danger", http.StatusOK, "page body"},
		{"member with permission", 2, "/servers/acme/citizens/12", http.StatusOK, "page body"},
		{"member without permission", 2, "/servers/acme/warrants", http.StatusForbidden, "You do not have permission to view this page."},
		{"member on unmatched path", 2, "/servers/acme/secret", http.StatusForbidden, "Unauthorized"},
		{"non-member on open page", 3, "/servers/acme/dashboard", http.StatusForbidden, "You are not a member of Acme RP."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestAs(http.MethodGet, tt.path, tt.userID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContain)
			if tt.wantStatus == http.StatusForbidden {
				assert.NotContains(t, rec.Body.String(), "page body")
			}
		})
	}

	t.Run("denied page keeps the filtered sidebar", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestAs(http.MethodGet, "/servers/acme/warrants", 2))

		body := rec.Body.String()
		assert.Contains(t, body, `href="/servers/acme/citizens"`)
		assert.NotContains(t, body, `href="/servers/acme/warrants"`)
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("guard", string(PowerUserBypass))))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("guard", string(NoPolicyFound))))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.AccessDecisionsTotal.WithLabelValues("guard", NotAMember)))
}

func TestGuard_ResolutionFailureFailsClosed(t *testing.T) {
	guard := NewGuard(&fakeChecker{err: errors.New("database is locked")}, navigation.Default(), nil)
	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("page must not render")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(http.MethodGet, "/servers/acme/dashboard", 1))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestGuard_MissingContextFailsClosed(t *testing.T) {
	guard := NewGuard(&fakeChecker{}, navigation.Default(), nil)
	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("page must not render")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/servers/acme/dashboard", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// auditRecorder keeps audit events in memory
type auditRecorder struct {
	events []audit.Event
}

func (a *auditRecorder) Log(_ context.Context, event *audit.Event) error {
	a.events = append(a.events, *event)
	return nil
}

func (a *auditRecorder) Close() error { return nil }

func TestGuard_AuditsDenials(t *testing.T) {
	checker := &fakeChecker{effective: map[int64]permissions.Effective{
		2: custom(permissions.ViewCitizen),
	}}
	recorder := &auditRecorder{}
	guard := NewGuard(checker, navigation.Default(), nil).WithAudit(recorder)
	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		userID int64
		path   string
	}{
		{2, "/servers/acme/citizens"},
		{2, "/servers/acme/warrants"},
		{3, "/servers/acme/dashboard"},
	} {
		handler.ServeHTTP(httptest.NewRecorder(), requestAs(http.MethodGet, tc.path, tc.userID))
	}

	if assert.Len(t, recorder.events, 2, "allowed requests are not audited") {
		assert.Equal(t, audit.EventTypeAccessDenied, recorder.events[0].EventType)
		assert.Equal(t, string(PermissionCheckFailed), recorder.events[0].Decision)
		assert.Equal(t, "/servers/acme/warrants", recorder.events[0].Path)
		assert.Equal(t, "acme", recorder.events[0].ServerSlug)
		assert.Equal(t, NotAMember, recorder.events[1].Decision)
	}

	failing := NewGuard(&fakeChecker{err: errors.New("database is locked")}, navigation.Default(), nil).WithAudit(recorder)
	failing.Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), requestAs(http.MethodGet, "/servers/acme/dashboard", 2))
	if assert.Len(t, recorder.events, 3) {
		assert.Equal(t, audit.EventTypeCheckFailed, recorder.events[2].EventType)
	}
}
