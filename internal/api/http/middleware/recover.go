package middleware

import (
	"net/http"
	"runtime/debug"

	httpctx "github.com/dtroode/brainlag-server/internal/api/http/context"
	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
)

// Recover turns a panicking handler into a 500 response.
type Recover struct {
	logger *logger.Logger
}

func NewRecover(logger *logger.Logger) *Recover {
	return &Recover{logger: logger}
}

func (m *Recover) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}

			m.logger.Error("Recover middleware: handler panicked",
				"request_id", httpctx.RequestIDFromContext(r.Context()),
				"path", redactPath(r.URL.Path),
				"panic", rv,
				"stack", string(debug.Stack()))

			apiErr := apperrors.NewErrInternalServerError(nil)
			handler.WriteMessage(w, apiErr.HTTPCode, apiErr.Message)
		}()

		next.ServeHTTP(w, r)
	})
}
