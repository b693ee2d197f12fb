package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	ID           string         `db:"ID"`            // ULID
	Username     string         `db:"USERNAME"`      // unique login name
	PasswordHash sql.NullString `db:"PASSWORD_HASH"` // bcrypt hash, NULL for username-only accounts
	IsCompleted  int            `db:"IS_COMPLETED"`  // 0/1, portable across SQLite and Oracle NUMBER(1)
	CreatedAt    time.Time      `db:"CREATED_AT"`
	UpdatedAt    time.Time      `db:"UPDATED_AT"`
}
