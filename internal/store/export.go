package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/quizgen/internal/model"
)

// RecordCall appends an upstream call to the log.
func (s *Store) RecordCall(rec model.CallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO api_calls (id, topic, difficulty, requested, returned, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Topic, rec.Difficulty, rec.Requested, rec.Returned, rec.Status, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert call %s: %w", rec.ID, err)
	}
	return nil
}

// ListCalls returns up to limit recorded calls, newest first.
// A non-positive limit returns all of them.
func (s *Store) ListCalls(limit int) ([]model.CallRecord, error) {
	query := `SELECT id, topic, difficulty, requested, returned, status, error, created_at
		FROM api_calls ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []model.CallRecord
	for rows.Next() {
		var c model.CallRecord
		if err := rows.Scan(&c.ID, &c.Topic, &c.Difficulty, &c.Requested, &c.Returned, &c.Status, &c.Error, &c.CreatedAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
