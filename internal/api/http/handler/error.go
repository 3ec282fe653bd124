package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// handleError writes the user-facing form of err. Anything that is not an
// APIError is logged and collapsed into a 500 without detail.
func handleError(w http.ResponseWriter, lg *logger.Logger, err error) {
	apiErr, ok := apperrors.As(err)
	if !ok {
		switch {
		case errors.Is(err, model.ErrNotFound):
			apiErr = apperrors.NewErrUserNotFound()
		default:
			lg.Error("HTTP handler: unexpected error",
				"error", err.Error())
			apiErr = apperrors.NewErrInternalServerError(err)
		}
	}

	WriteMessage(w, apiErr.HTTPCode, apiErr.Message)
}
