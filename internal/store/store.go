// Package store defines the local persistence boundary for captured sessions.
// The capture orchestrator only sees the Store interface, so tests can
// substitute fakes and deployments can swap the engine.
package store

import (
	"context"
	"database/sql"

	"github.com/kmoseng/handoff/internal/db"
	"github.com/kmoseng/handoff/internal/session"
)

// Store is the local persistence boundary. Put must be safe for
// concurrent use with distinct session IDs.
type Store interface {
	Put(ctx context.Context, rec *session.Record) error
}

// SQLite persists session records in the local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed store.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

// Put appends a session record.
func (s *SQLite) Put(ctx context.Context, rec *session.Record) error {
	return db.InsertSession(ctx, s.db, rec)
}
