package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// Messages returned by the auth flows.
const (
	MessageRegistered         = "Registration successful"
	MessageResetAvailable     = "If user exists, password reset available"
	MessageResetTokenIssued   = "Password reset token generated"
	MessagePasswordResetDone  = "Password reset successful"
	defaultResetTokenLifetime = 15 * time.Minute
)

// AuthConfig tunes the password reset flow.
type AuthConfig struct {
	ResetTokenTTL time.Duration
	// ExposeResetToken returns the reset token to the caller instead of
	// handing it to the notifier only.
	ExposeResetToken bool
}

type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	notifier     model.ResetNotifier
	logger       *logger.Logger
	cfg          AuthConfig
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	notifier model.ResetNotifier,
	logger *logger.Logger,
	cfg AuthConfig,
) *Auth {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenLifetime
	}
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: NewTokenService(tokenManager, logger),
		notifier:     notifier,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) error {
	if params.Username == "" || params.Email == "" || params.Password == "" {
		return apperrors.NewErrFieldsRequired()
	}

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	exists, err := a.userStore.ExistsByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil {
		a.logger.Error("Auth service: failed to check existing user",
			"email", params.Email,
			"error", err.Error())
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return apperrors.NewErrUserExists()
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now().UTC()
	_, err = a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		a.logger.Info("Auth service: concurrent registration lost unique check",
			"email", params.Email)
		return apperrors.NewErrUserExists()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"email", params.Email)

	return nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	a.logger.Debug("Auth service: login attempt",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		// keep the unknown-email path as slow as a wrong password
		_ = a.hasher.Compare(a.dummyPasswordHash(), password)
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.LoginResult{}, apperrors.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.LoginResult{}, apperrors.NewErrInvalidCredentials()
	}

	token, expiresAt, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"email", email,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login successful",
		"email", email,
		"user_id", user.ID)

	return model.LoginResult{
		Token:     token,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// GetCurrentUser returns the public view of an authenticated user.
func (a *Auth) GetCurrentUser(ctx context.Context, userID uuid.UUID) (model.CurrentUser, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.CurrentUser{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.CurrentUser{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return model.CurrentUser{Email: user.Email, Username: user.Username}, nil
}

func (a *Auth) ForgotPassword(ctx context.Context, email string) (model.ForgotPasswordResult, error) {
	generic := model.ForgotPasswordResult{Message: MessageResetAvailable}
	if email == "" {
		a.logger.Debug("Auth service: password reset without email")
		return generic, nil
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Debug("Auth service: password reset for unknown email",
			"email", email)
		return generic, nil
	}
	if err != nil {
		return model.ForgotPasswordResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	token, digest, err := newResetToken()
	if err != nil {
		return model.ForgotPasswordResult{}, err
	}

	expiresAt := a.now().Add(a.cfg.ResetTokenTTL).UTC()
	if err := a.userStore.SetResetToken(ctx, user.ID, digest, expiresAt); err != nil {
		a.logger.Error("Auth service: failed to store reset token",
			"email", email,
			"error", err.Error())
		return model.ForgotPasswordResult{}, fmt.Errorf("failed to store reset token: %w", err)
	}

	a.logger.Info("Auth service: password reset token issued",
		"email", email,
		"expires_at", expiresAt)

	if a.cfg.ExposeResetToken {
		return model.ForgotPasswordResult{Message: MessageResetTokenIssued, ResetToken: token}, nil
	}

	if a.notifier != nil {
		if err := a.notifier.NotifyPasswordReset(ctx, user.Email, token, expiresAt); err != nil {
			a.logger.Error("Auth service: failed to deliver reset token",
				"email", email,
				"error", err.Error())
			return model.ForgotPasswordResult{}, fmt.Errorf("failed to deliver reset token: %w", err)
		}
	}

	return generic, nil
}

func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.NewErrInvalidResetToken()
	}
	if newPassword == "" {
		return apperrors.NewErrPasswordRequired()
	}

	digest := hashToken(token)
	user, err := a.userStore.GetByResetTokenHash(ctx, digest)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrInvalidResetToken()
	}
	if err != nil {
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if !equalBytes(user.ResetTokenHash, digest) ||
		user.ResetTokenExpiresAt == nil ||
		!a.now().Before(*user.ResetTokenExpiresAt) {
		a.logger.Info("Auth service: expired reset token presented",
			"email", user.Email)
		return apperrors.NewErrInvalidResetToken()
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = a.userStore.UpdatePassword(ctx, user.ID, hash, digest)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrInvalidResetToken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to update password",
			"email", user.Email,
			"error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Auth service: password reset",
		"email", user.Email)

	return nil
}

func (a *Auth) dummyPasswordHash() string {
	a.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		hash, err := a.hasher.Hash(hex.EncodeToString(buf))
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	return a.dummyHash
}
