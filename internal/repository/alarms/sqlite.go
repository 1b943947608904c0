package alarms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Registers the "sqlite" database/sql driver.

	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

// Repository defines persistence operations for pending alerts.
type Repository interface {
	Save(ctx context.Context, alert *domain.Alert) error
	Delete(ctx context.Context, tag int) error
	List(ctx context.Context) ([]*domain.Alert, error)
}

// SQLiteRepository stores alerts in a single SQLite table.
type SQLiteRepository struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	tag        INTEGER PRIMARY KEY,
	title      TEXT    NOT NULL,
	message    TEXT    NOT NULL,
	fire_at_ms INTEGER NOT NULL,
	repeat_ms  INTEGER NOT NULL DEFAULT 0
);`

var (
	// errPathRequired is returned when no database path is configured.
	errPathRequired = errors.New("alarm database path is required")
	// errNilAlert is returned when Save receives nil.
	errNilAlert = errors.New("alert is nil")
)

// Open opens (creating if needed) the alert database at path.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errPathRequired
	}

	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create alarm database folder: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open alarm database: %w", err)
	}

	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate alarm database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}

	return r.db.Close()
}

// Save inserts the alert or replaces the one stored under the same tag.
func (r *SQLiteRepository) Save(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return errNilAlert
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts(tag, title, message, fire_at_ms, repeat_ms) VALUES(?,?,?,?,?)
		 ON CONFLICT(tag) DO UPDATE SET
			title=excluded.title,
			message=excluded.message,
			fire_at_ms=excluded.fire_at_ms,
			repeat_ms=excluded.repeat_ms`,
		alert.Tag, alert.Title, alert.Message, alert.FireAt.UnixMilli(), alert.RepeatInterval.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save alert %d: %w", alert.Tag, err)
	}

	return nil
}

// Delete removes the alert stored under tag. Unknown tags are ignored.
func (r *SQLiteRepository) Delete(ctx context.Context, tag int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE tag = ?`, tag); err != nil {
		return fmt.Errorf("delete alert %d: %w", tag, err)
	}

	return nil
}

// List returns every stored alert ordered by tag.
func (r *SQLiteRepository) List(ctx context.Context) ([]*domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag, title, message, fire_at_ms, repeat_ms FROM alerts ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var result []*domain.Alert

	for rows.Next() {
		var (
			alert    domain.Alert
			fireAtMS int64
			repeatMS int64
		)

		if err = rows.Scan(&alert.Tag, &alert.Title, &alert.Message, &fireAtMS, &repeatMS); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}

		alert.FireAt = time.UnixMilli(fireAtMS)
		alert.RepeatInterval = time.Duration(repeatMS) * time.Millisecond

		result = append(result, &alert)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	return result, nil
}
