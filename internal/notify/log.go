// Package notify delivers password reset tokens out of band.
package notify

import (
	"context"
	"time"

	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

var _ model.ResetNotifier = (*LogNotifier)(nil)

// LogNotifier records that a reset token was issued without writing the token itself.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyPasswordReset(_ context.Context, email, _ string, expiresAt time.Time) error {
	n.logger.Info("Reset notifier: password reset token issued",
		"email", email,
		"expires_at", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
