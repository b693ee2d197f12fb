package domain

import (
	"strings"
	"time"
)

// Role is the access level carried in an issued token.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
)

// User is an exam candidate account provisioned by the administrator.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt; empty means the account logs in by username alone
	IsCompleted  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a new User instance
func NewUser(id, username, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           id,
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasPassword reports whether the account requires a password to log in.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Validate validates the user
func (u *User) Validate() error {
	if u.ID == "" {
		return NewInvalidInputError("user id is required")
	}
	if u.Username == "" {
		return NewInvalidInputError("username is required")
	}
	return nil
}
