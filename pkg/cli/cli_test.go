package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := run(t, "routes", "--slug", "acme")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "GROUP"))
		assert.Contains(t, out, "/servers/acme/dashboard")
		assert.NotContains(t, out, navigation.Placeholder)
	})

	t.Run("json round-trips the table", func(t *testing.T) {
		out, err := run(t, "routes", "-o", "json")
		require.NoError(t, err)

		var table navigation.Table
		require.NoError(t, json.Unmarshal([]byte(out), &table))
		assert.Equal(t, navigation.Default().Groups, table.Groups)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "routes", "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "routes", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestTokenCommand_Generate(t *testing.T) {
	out, err := run(t, "token")
	require.NoError(t, err)
	assert.Contains(t, out, "token:  cad_")
	assert.Contains(t, out, "hash:   ")
}

func TestMigrateAndStoreToken(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cadmdt.db")
	t.Setenv("CADMDT_DATABASE_DRIVER", storage.DriverSQLite)
	t.Setenv("CADMDT_DATABASE_URL", dbPath)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema at version 2 (sqlite3)\n", out)

	db, err := storage.Open(context.Background(), storage.Config{Driver: storage.DriverSQLite, URL: dbPath})
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username) VALUES ('dispatcher')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO organizations (name, slug) VALUES ('Acme RP', 'acme')`)
	require.NoError(t, err)
	store, err := audit.NewDBLogger(db)
	require.NoError(t, err)
	userID, orgID := int64(1), int64(1)
	require.NoError(t, store.Log(context.Background(), &audit.Event{
		Timestamp:      time.Now().UTC(),
		EventType:      audit.EventTypeAccessDenied,
		Evaluator:      "guard",
		Decision:       "PERMISSION_CHECK_FAILED",
		UserID:         &userID,
		OrganizationID: &orgID,
		ServerSlug:     "acme",
		Path:           "/servers/acme/warrants",
	}))
	require.NoError(t, db.Close())

	out, err = run(t, "audit", "-s", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "authz.access_denied")
	assert.Contains(t, out, "/servers/acme/warrants")

	_, err = run(t, "audit", "-s", "nowhere")
	assert.Error(t, err)

	out, err = run(t, "token", "--user-id", "1", "--name", "mdt-01", "--ttl", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "token:  cad_")
	assert.Contains(t, out, "id:     1")
}

func TestCheckCommand(t *testing.T) {
	var (
		mu       sync.Mutex
		lastAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastAuth = r.Header.Get("Authorization")
		mu.Unlock()
		var req struct {
			Permissions []string `json:"permissions"`
			Mode        string   `json:"mode"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Mode == "BULK" {
			_, _ = w.Write([]byte(`{"results":{"VIEW_CITIZEN":true}}`))
			return
		}
		_, _ = w.Write([]byte(`{"granted":` + map[bool]string{true: "true", false: "false"}[req.Mode == "OR"] + `}`))
	}))
	defer srv.Close()

	t.Run("granted", func(t *testing.T) {
		out, err := run(t, "check", "--host", srv.URL, "--token", "cad_x", "-s", "acme", "view_citizen")
		require.NoError(t, err)
		assert.Equal(t, "granted\n", out)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "Bearer cad_x", lastAuth)
	})

	t.Run("denied exits with an error", func(t *testing.T) {
		out, err := run(t, "check", "--host", srv.URL, "-s", "acme", "-m", "and", "VIEW_CITIZEN", "VIEW_VEHICLE")
		assert.Error(t, err)
		assert.Equal(t, "denied\n", out)
	})

	t.Run("bulk", func(t *testing.T) {
		out, err := run(t, "check", "--host", srv.URL, "-s", "acme", "-m", "BULK", "VIEW_CITIZEN", "VIEW_VEHICLE")
		require.NoError(t, err)
		assert.Equal(t, "VIEW_CITIZEN\ttrue\nVIEW_VEHICLE\tfalse\n", out)
	})

	t.Run("server is required", func(t *testing.T) {
		_, err := run(t, "check", "--host", srv.URL, "VIEW_CITIZEN")
		assert.Error(t, err)
	})

	t.Run("unreachable server is denied", func(t *testing.T) {
		out, err := run(t, "check", "--host", "http://127.0.0.1:1", "-s", "acme", "VIEW_CITIZEN")
		assert.Error(t, err)
		assert.Equal(t, "denied\n", out)
	})
}
