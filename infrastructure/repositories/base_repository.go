package repositories

import (
	"database/sql"
	"encoding/json"

	"auditflow/database"
)

// BaseRepository provides shared read/write database access for all
// repository implementations.
type BaseRepository struct {
	db *database.Database
}

// NewBaseRepository creates a base repository with read/write separation.
func NewBaseRepository(db *database.Database) *BaseRepository {
	return &BaseRepository{db: db}
}

// ReadDB returns the pooled read connection.
func (r *BaseRepository) ReadDB() *sql.DB {
	return r.db.ReadDB()
}

// WriteDB returns the serialized write connection.
func (r *BaseRepository) WriteDB() *sql.DB {
	return r.db.WriteDB()
}

// WithTx runs fn inside a write transaction.
func (r *BaseRepository) WithTx(fn func(*sql.Tx) error) error {
	return r.db.WithTx(fn)
}

// Helpers for nullable and JSON-encoded columns.

func ns(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}
