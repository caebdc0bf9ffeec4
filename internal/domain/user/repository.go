package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUsernameTaken = errors.New("username already taken")
)

type Repository interface {
	Save(ctx context.Context, user *User) error

	FindByID(ctx context.Context, userID int64) (*User, error)

	FindByUsername(ctx context.Context, username string) (*User, error)
}
