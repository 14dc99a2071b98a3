// Package storage keeps the local activity journal in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"livrocaixa/internal/core"
)

const timeLayout = time.RFC3339Nano

// MaxAttempts is the number of failed publishes after which an entry is no
// longer returned by Pending.
const MaxAttempts = 10

// Journal records mutations confirmed by the finance API.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// OpenJournal opens (creating if needed) the database at dbPath and applies
// migrations.
func OpenJournal(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record appends an entry and returns it with its ID and timestamp set.
func (j *Journal) Record(ctx context.Context, a core.Activity) (core.Activity, error) {
	if a.Action != core.ActionCreated && a.Action != core.ActionDeleted {
		return core.Activity{}, fmt.Errorf("record activity: unknown action %q", a.Action)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = j.now()
	}
	a.CreatedAt = a.CreatedAt.UTC()

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO activity (action, transaction_id, description, kind, amount_cents, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Action, a.TransactionID, a.Description, string(a.Kind), a.AmountCents, a.RequestID,
		a.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Activity{}, fmt.Errorf("activity id: %w", err)
	}
	a.ID = id

	slog.DebugContext(ctx, "Activity recorded",
		"component", "storage",
		"id", a.ID,
		"action", a.Action,
		"transaction_id", a.TransactionID)
	return a, nil
}

// Recent returns the newest entries first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]core.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, selectActivity+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}
	return scanActivities(rows)
}

// Pending returns unpublished entries, oldest first, skipping entries that
// exhausted MaxAttempts.
func (j *Journal) Pending(ctx context.Context, limit int) ([]core.Activity, error) {
	rows, err := j.db.QueryContext(ctx,
		selectActivity+` WHERE published_at IS NULL AND attempts < ? ORDER BY id LIMIT ?`,
		MaxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending activity: %w", err)
	}
	return scanActivities(rows)
}

func (j *Journal) MarkPublished(ctx context.Context, id int64) error {
	return j.update(ctx, `UPDATE activity SET published_at = ?, last_error = '' WHERE id = ?`,
		j.now().UTC().Format(timeLayout), id)
}

// MarkFailed counts a failed publish and keeps its error.
func (j *Journal) MarkFailed(ctx context.Context, id int64, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return j.update(ctx, `UPDATE activity SET attempts = attempts + 1, last_error = ? WHERE id = ?`, msg, id)
}

// ErrNotFound is returned when an update matches no entry.
var ErrNotFound = errors.New("activity not found")

func (j *Journal) update(ctx context.Context, query string, args ...any) error {
	res, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectActivity = `
	SELECT id, action, transaction_id, description, kind, amount_cents, request_id,
	       created_at, published_at, attempts, last_error
	FROM activity`

func scanActivities(rows *sql.Rows) ([]core.Activity, error) {
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		var (
			a         core.Activity
			kind      string
			created   string
			published sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Action, &a.TransactionID, &a.Description, &kind,
			&a.AmountCents, &a.RequestID, &created, &published, &a.Attempts, &a.LastError); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Kind = core.Kind(kind)

		t, err := time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of activity %d: %w", a.ID, err)
		}
		a.CreatedAt = t

		if published.Valid {
			p, err := time.Parse(timeLayout, published.String)
			if err != nil {
				return nil, fmt.Errorf("parse published_at of activity %d: %w", a.ID, err)
			}
			a.PublishedAt = &p
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return out, nil
}
