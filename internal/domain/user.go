package domain

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"` // UUID
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines data access for users.
//
// Create must enforce username uniqueness atomically: under concurrent
// inserts with the same username exactly one call succeeds and the others
// return ErrUsernameTaken. Implementations rely on a storage-level unique
// constraint (Postgres) or a single lock around check-and-insert (memory).
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
