package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteWithMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Driver = DriverSQLite
	cfg.URL = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.Migrate = true

	db, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	version, err := MigrationVersion(db, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"users", "api_tokens", "organizations", "custom_roles", "members", "access_audit"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	// migrations are idempotent
	require.NoError(t, Migrate(db, DriverSQLite))
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{Driver: "mysql", URL: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = Open(ctx, Config{Driver: DriverSQLite})
	assert.ErrorContains(t, err, "database URL is required")
}

func TestMembersRoleConstraint(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, URL: "file:" + t.Name() + "?mode=memory&cache=shared", Migrate: true})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO users (username) VALUES ('dispatcher')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO organizations (name, slug) VALUES ('Acme RP', 'acme')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO members (organization_id, user_id, role) VALUES (1, 1, 'superuser')`)
	assert.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO members (organization_id, user_id, role) VALUES (1, 1, 'member')`)
	assert.NoError(t, err)
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewRedisClient(ctx, Config{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err = NewRedisClient(ctx, Config{RedisURL: "redis://" + mr.Addr(), RedisPoolSize: 5})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")

	_, err = NewRedisClient(ctx, Config{RedisURL: "://bad"})
	assert.Error(t, err)
}
