package dto

import "time"

// CreateUserRequest represents a request to provision a candidate account.
// An empty password creates an account that logs in with the username alone.
// Usernames appear as a path segment in the admin routes, so they are limited to
// letters, digits and . _ @ -.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
}

// UserResponse represents a candidate account
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	IsCompleted bool      `json:"is_completed"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserListResponse represents the list of candidate accounts
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}
