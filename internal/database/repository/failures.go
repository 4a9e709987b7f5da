package repository

import (
	"context"
	"database/sql"
	"time"
)

// FailureRepo handles the fetch failure journal.
type FailureRepo struct{ db *sql.DB }

func NewFailureRepo(db *sql.DB) *FailureRepo { return &FailureRepo{db: db} }

func (r *FailureRepo) Add(ctx context.Context, f Failure) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO fetch_failures(id, unit, operation, message, occurred_at)
	VALUES(?, ?, ?, ?, ?)
	`, f.ID, f.Unit, f.Operation, f.Message, f.OccurredAt)
	return err
}

// Recent returns up to limit rows, newest first.
func (r *FailureRepo) Recent(ctx context.Context, limit int) ([]Failure, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, unit, operation, message, occurred_at FROM fetch_failures ORDER BY occurred_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.Unit, &f.Operation, &f.Message, &f.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FailureRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetch_failures`).Scan(&n)
	return n, err
}

// Prune deletes rows older than before and reports how many went.
func (r *FailureRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fetch_failures WHERE occurred_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
