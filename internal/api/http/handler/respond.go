package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dtroode/brainlag-server/internal/apperrors"
)

const maxRequestBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a {"message": ...} body.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, messageResponse{Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return apperrors.NewErrInvalidRequestBody()
	}
	if err != nil {
		return &apperrors.APIError{
			Kind:     apperrors.KindValidation,
			HTTPCode: http.StatusBadRequest,
			Message:  "Invalid request body",
			Err:      err,
		}
	}
	return nil
}
