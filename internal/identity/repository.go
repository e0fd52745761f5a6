package identity

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the user record is absent or unreadable.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
)

// Repository persists user records.
type Repository interface {
	Create(ctx context.Context, u User) error
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
}
