package store

import (
	"database/sql"
	"strconv"

	"github.com/pavelanni/quizgen/internal/usage"
)

const usageCountKey = "usage_count"

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Load implements usage.Backend. A missing row counts as zero.
func (s *Store) Load() (int, error) {
	v, err := s.GetMetadata(usageCountKey)
	if err != nil {
		return 0, err
	}
	return usage.ParseCount(v)
}

// Save implements usage.Backend.
func (s *Store) Save(n int) error {
	return s.SetMetadata(usageCountKey, strconv.Itoa(n))
}
