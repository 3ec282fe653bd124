package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash []byte, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash []byte) (User, error)
	// UpdatePassword replaces the password hash and clears the reset token, but only
	// while the stored reset token hash still equals tokenHash. It returns ErrNotFound
	// when no such user remains.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, tokenHash []byte) error
}

// User represents a stored user with authentication material.
type User struct {
	ID                  uuid.UUID
	Username            string
	Email               string
	PasswordHash        string
	ResetTokenHash      []byte
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RegisterParams contains parameters to register a user.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// CurrentUser is the public view of the authenticated user.
type CurrentUser struct {
	Email    string
	Username string
}

// ForgotPasswordResult is returned by the forgot-password flow. ResetToken is
// empty when no user matched or when tokens are delivered out of band.
type ForgotPasswordResult struct {
	Message    string
	ResetToken string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// ResetNotifier delivers password reset tokens out of band.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}
