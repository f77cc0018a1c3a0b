// Package storage opens the relational database and the optional Redis connection used
// by the CAD/MDT service, and owns the schema migrations.
//
// # Drivers
//
//	postgres  - production (github.com/lib/pq)
//	sqlite3   - local development and tests (github.com/mattn/go-sqlite3)
//
// # Migrations
//
// Migrations are embedded goose SQL files, one directory per dialect. They create the
// membership schema consumed read-only by permission resolution:
//
//	users, api_tokens, organizations, custom_roles (permissions JSON text), members
//
// Usage:
//
//	db, err := storage.Open(ctx, storage.Config{Driver: "sqlite3", URL: "file:cad.db", Migrate: true})
package storage
