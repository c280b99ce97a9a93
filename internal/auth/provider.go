package auth

import (
	"context"
	"errors"

	"fleetsync-backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Provider is the external identity service the session manager listens to.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	// Restore returns the identity of a persisted session, or nil.
	Restore(ctx context.Context) (*models.Identity, error)
}

const minPasswordLength = 6

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
