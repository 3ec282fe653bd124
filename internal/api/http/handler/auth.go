package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
	"github.com/dtroode/brainlag-server/internal/service"
)

// AuthService defines account operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) error
	Login(ctx context.Context, email, password string) (model.LoginResult, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (model.CurrentUser, error)
	ForgotPassword(ctx context.Context, email string) (model.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type currentUserResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// Auth handles HTTP endpoints for accounts.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	err := h.authService.Register(r.Context(), model.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Info("Auth handler: registration failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	WriteMessage(w, http.StatusCreated, service.MessageRegistered)
}

// Login verifies credentials and returns a session token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{Token: result.Token, Email: result.Email})
}

// Me returns the authenticated user.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.contextManager, h.authService)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, currentUserResponse{Email: user.Email, Username: user.Username})
}

// ForgotPassword starts a password reset.
func (h *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, forgotPasswordResponse{Message: result.Message, ResetToken: result.ResetToken})
}

// ResetPassword consumes a reset token from the path and sets a new password.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, req.Password); err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteMessage(w, http.StatusOK, service.MessagePasswordResetDone)
}

// UserResolver loads the public view of a user.
type UserResolver interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (model.CurrentUser, error)
}

func currentUser(ctx context.Context, cm model.ContextManager, users UserResolver) (model.CurrentUser, error) {
	userID, ok := cm.GetUserIDFromContext(ctx)
	if !ok {
		return model.CurrentUser{}, apperrors.NewErrMissingAuthorizationToken()
	}
	return users.GetCurrentUser(ctx, userID)
}
