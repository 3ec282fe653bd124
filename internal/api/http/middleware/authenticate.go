package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid bearer token with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r.Header.Get("Authorization"))

		userID, authErr := m.authenticateUser(r.Context(), tokenString)
		if authErr != nil {
			m.logger.Debug("Authenticate middleware: request rejected",
				"path", redactPath(r.URL.Path),
				"reason", authErr.Message)
			handler.WriteMessage(w, authErr.HTTPCode, authErr.Message)
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate resolves the bearer token of r without writing a response.
// The returned context carries the user ID.
func (m *Authenticate) Authenticate(r *http.Request) (context.Context, error) {
	userID, authErr := m.authenticateUser(r.Context(), extractBearerToken(r.Header.Get("Authorization")))
	if authErr != nil {
		return nil, authErr
	}
	return m.contextManager.SetUserIDToContext(r.Context(), userID), nil
}

func (m *Authenticate) authenticateUser(ctx context.Context, tokenString string) (uuid.UUID, *apperrors.APIError) {
	if tokenString == "" {
		return uuid.Nil, apperrors.NewErrMissingAuthorizationToken()
	}

	userID, err := m.tokenService.GetUserID(ctx, tokenString)
	if err != nil {
		return uuid.Nil, apperrors.NewErrInvalidAuthorizationToken()
	}

	if userID == uuid.Nil {
		return uuid.Nil, apperrors.NewErrInvalidAuthorizationToken()
	}

	return userID, nil
}

func extractBearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
