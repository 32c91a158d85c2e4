package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/kmoseng/handoff/internal/errors"
	"github.com/kmoseng/handoff/internal/session"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.HandoffError{
	Code:    errors.ErrUniqueConstraint,
	Status:  409,
	Message: "unique constraint violation",
}

// InsertSession stores a new session record. Records are append-only;
// there is no update path.
func InsertSession(ctx context.Context, db *sql.DB, rec *session.Record) error {
	decisions, err := marshalList(rec.Decisions)
	if err != nil {
		return errors.NewInternal(err)
	}
	nextSteps, err := marshalList(rec.NextSteps)
	if err != nil {
		return errors.NewInternal(err)
	}
	blockers, err := marshalList(rec.Blockers)
	if err != nil {
		return errors.NewInternal(err)
	}
	tags, err := marshalList(rec.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO sessions (
			id, summary, decisions_json, next_steps_json,
			blockers_json, tags_json, captured_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		rec.SessionID, rec.Summary, decisions, nextSteps,
		blockers, tags, rec.CapturedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// GetSession retrieves a session record by its ULID.
func GetSession(ctx context.Context, db *sql.DB, id string) (*session.Record, error) {
	query := `
		SELECT id, summary, decisions_json, next_steps_json,
			blockers_json, tags_json, captured_at
		FROM sessions
		WHERE id = ?
	`

	var rec session.Record
	var decisions, nextSteps, blockers, tags sql.NullString

	err := db.QueryRowContext(ctx, query, id).Scan(
		&rec.SessionID, &rec.Summary, &decisions, &nextSteps,
		&blockers, &tags, &rec.CapturedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if rec.Decisions, err = unmarshalList(decisions); err != nil {
		return nil, errors.NewInternal(err)
	}
	if rec.NextSteps, err = unmarshalList(nextSteps); err != nil {
		return nil, errors.NewInternal(err)
	}
	if rec.Blockers, err = unmarshalList(blockers); err != nil {
		return nil, errors.NewInternal(err)
	}
	if rec.Tags, err = unmarshalList(tags); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &rec, nil
}

// CountSessions returns the number of captured sessions.
func CountSessions(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// marshalList converts a string slice to JSON for storage.
// Empty slices are stored as NULL.
func marshalList(items []string) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalList converts a stored JSON column back to a string slice.
// NULL columns come back as empty slices.
func unmarshalList(col sql.NullString) ([]string, error) {
	if !col.Valid {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
