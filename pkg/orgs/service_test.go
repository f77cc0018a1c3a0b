package orgs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// Test helper to create a new mock service
func newMockService(t *testing.T) (*SQLService, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	service := NewSQLService(db)
	return service, mock, db
}

var orgColumns = []string{"id", "name", "slug", "display_name", "is_active"}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple name", input: "AcmeRP", expected: "acmerp"},
		{name: "name with spaces", input: "Los Santos RP", expected: "los-santos-rp"},
		{name: "name with dashes and digits", input: "LS-RP-2", expected: "ls-rp-2"},
		{name: "name with invalid chars", input: "Acme@RP!", expected: "acmerp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSlug(tt.input))
		})
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("acme-rp"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("Acme"))
	assert.False(t, ValidSlug("acme/../x"))
}

func TestGetOrganizationBySlug(t *testing.T) {
	service, mock, db := newMockService(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, slug, display_name, is_active\s+FROM organizations\s+WHERE slug = \$1`).
			WithArgs("acme-rp").
			WillReturnRows(sqlmock.NewRows(orgColumns).AddRow(7, "Acme RP", "acme-rp", "Acme Roleplay", true))

		org, err := service.GetOrganizationBySlug(ctx, "acme-rp")
		require.NoError(t, err)
		assert.Equal(t, int64(7), org.ID)
		assert.Equal(t, "Acme Roleplay", org.Title())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM organizations`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := service.GetOrganizationBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive organization is hidden", func(t *testing.T) {
		mock.ExpectQuery(`FROM organizations`).
			WithArgs("closed").
			WillReturnRows(sqlmock.NewRows(orgColumns).AddRow(8, "Closed", "closed", "", false))

		_, err := service.GetOrganizationBySlug(ctx, "closed")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid slug skips the database", func(t *testing.T) {
		_, err := service.GetOrganizationBySlug(ctx, "Not A Slug")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`FROM organizations`).
			WithArgs("acme-rp").
			WillReturnError(errors.New("connection refused"))

		_, err := service.GetOrganizationBySlug(ctx, "acme-rp")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrOrganizationNotFound)
		assert.Contains(t, err.Error(), "failed to get organization")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrganization(t *testing.T) {
	service, mock, db := newMockService(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(orgColumns).AddRow(3, "Blaine", "blaine", "", true))

	org, err := service.GetOrganization(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Blaine", org.Title())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMember(t *testing.T) {
	service, mock, db := newMockService(t)
	defer db.Close()
	ctx := context.Background()

	columns := []string{"id", "organization_id", "user_id", "role", "custom_role_id", "id", "name", "permissions"}
	query := `SELECT m.id, m.organization_id, m.user_id, m.role, m.custom_role_id,\s+cr.id, cr.name, cr.permissions\s+FROM members m\s+LEFT JOIN custom_roles cr`

	t.Run("member with custom role", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), int64(10)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(5, 1, 10, "member", 2, 2, "Patrol", `{"VIEW_CITIZEN":true}`))

		member, err := service.GetMember(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, permissions.RoleMember, member.Role)
		require.NotNil(t, member.CustomRoleID)
		assert.Equal(t, int64(2), *member.CustomRoleID)
		require.NotNil(t, member.CustomRole)
		assert.Equal(t, "Patrol", member.CustomRole.Name)
		assert.Equal(t, `{"VIEW_CITIZEN":true}`, member.CustomRole.Permissions)
		assert.Equal(t, int64(1), member.CustomRole.OrganizationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("member without custom role", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), int64(11)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(6, 1, 11, "admin", nil, nil, nil, nil))

		member, err := service.GetMember(ctx, 1, 11)
		require.NoError(t, err)
		assert.Equal(t, permissions.RoleAdmin, member.Role)
		assert.Nil(t, member.CustomRoleID)
		assert.Nil(t, member.CustomRole)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("dangling custom role reference", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), int64(12)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(7, 1, 12, "member", 99, nil, nil, nil))

		member, err := service.GetMember(ctx, 1, 12)
		require.NoError(t, err)
		require.NotNil(t, member.CustomRoleID)
		assert.Nil(t, member.CustomRole)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not a member", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.GetMember(ctx, 1, 99)
		assert.ErrorIs(t, err, ErrMemberNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(1), int64(10)).
			WillReturnError(errors.New("timeout"))

		_, err := service.GetMember(ctx, 1, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get member")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetCustomRole(t *testing.T) {
	service, mock, db := newMockService(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectQuery(`FROM custom_roles\s+WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name", "permissions"}).
			AddRow(2, 1, "Medic", `{"VIEW_MEDICAL_RECORD":true}`))

	role, err := service.GetCustomRole(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Medic", role.Name)

	mock.ExpectQuery(`FROM custom_roles`).
		WithArgs(int64(1), int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err = service.GetCustomRole(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrCustomRoleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type countingLookup struct {
	calls int
	org   *Organization
	err   error
}

func (c *countingLookup) GetOrganizationBySlug(_ context.Context, _ string) (*Organization, error) {
	c.calls++
	return c.org, c.err
}

func TestSlugCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hits are served from cache", func(t *testing.T) {
		next := &countingLookup{org: &Organization{ID: 1, Slug: "acme"}}
		cache := NewSlugCache(next, 10, time.Minute)

		for i := 0; i < 3; i++ {
			org, err := cache.GetOrganizationBySlug(ctx, "acme")
			require.NoError(t, err)
			assert.Equal(t, int64(1), org.ID)
		}
		assert.Equal(t, 1, next.calls)
		assert.Equal(t, 1, cache.Len())

		cache.Invalidate("acme")
		_, err := cache.GetOrganizationBySlug(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingLookup{err: ErrOrganizationNotFound}
		cache := NewSlugCache(next, 10, time.Minute)

		_, err := cache.GetOrganizationBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
		_, err = cache.GetOrganizationBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
		assert.Equal(t, 2, next.calls)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("hits and misses are counted", func(t *testing.T) {
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		cache := NewSlugCache(&countingLookup{org: &Organization{ID: 1}}, 10, time.Minute).WithMetrics(metrics)

		_, _ = cache.GetOrganizationBySlug(ctx, "acme")
		_, _ = cache.GetOrganizationBySlug(ctx, "acme")
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("org_slug")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("org_slug")))
	})

	t.Run("disabled cache always loads", func(t *testing.T) {
		next := &countingLookup{org: &Organization{ID: 1}}
		cache := NewSlugCache(next, 0, time.Minute)

		_, _ = cache.GetOrganizationBySlug(ctx, "acme")
		_, _ = cache.GetOrganizationBySlug(ctx, "acme")
		assert.Equal(t, 2, next.calls)
		assert.Equal(t, 0, cache.Len())
	})
}
