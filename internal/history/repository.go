package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
)

// Deploy outcomes stored in the status column.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one deploy run.
type Record struct {
	ID         string
	ServiceID  string
	Action     string
	Status     string
	ServiceURL string
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Succeeded reports whether the run finished without error.
func (r Record) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Save inserts a deploy record. A zero ID gets a fresh UUID; the
// returned record carries the final ID and timestamp.
func (db *DB) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}

	query := `
		INSERT INTO deployments (id, service_id, action, status, service_url, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		rec.ID,
		rec.ServiceID,
		rec.Action,
		rec.Status,
		rec.ServiceURL,
		rec.Error,
		rec.Duration.Milliseconds(),
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to save deploy record: %w", err)
	}
	return rec, nil
}

// Recent returns the newest records, most recent first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, service_id, action, status, service_url, error, duration_ms, created_at
		FROM deployments
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deploy records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deploy records: %w", err)
	}
	return records, nil
}

// Get returns a single record by ID, or ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (Record, error) {
	query := `
		SELECT id, service_id, action, status, service_url, error, duration_ms, created_at
		FROM deployments
		WHERE id = ?
	`
	rec, err := scanRecord(db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("deploy record %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query deploy record: %w", err)
	}
	return rec, nil
}

// LastSuccess returns the most recent succeeded record for serviceID,
// or ErrNotFound when the service has never shipped cleanly.
func (db *DB) LastSuccess(ctx context.Context, serviceID string) (Record, error) {
	query := `
		SELECT id, service_id, action, status, service_url, error, duration_ms, created_at
		FROM deployments
		WHERE service_id = ? AND status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	rec, err := scanRecord(db.conn.QueryRowContext(ctx, query, serviceID, StatusSucceeded))
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("no successful deploy for %s: %w", serviceID, errors.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query last success: %w", err)
	}
	return rec, nil
}

// Prune deletes records older than keep, returning how many were removed.
func (db *DB) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	cutoff := now().Add(-keep).Unix()
	res, err := db.conn.ExecContext(ctx, `DELETE FROM deployments WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune deploy records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec        Record
		durationMS int64
		createdAt  int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.ServiceID,
		&rec.Action,
		&rec.Status,
		&rec.ServiceURL,
		&rec.Error,
		&durationMS,
		&createdAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}
