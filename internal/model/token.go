package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates session tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (token string, expiresAt time.Time, err error)
	ParseAccessToken(token string) (uuid.UUID, error)
}
