package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// SessionRecordService defines study session record operations.
type SessionRecordService interface {
	List(ctx context.Context, params model.ListSessionRecordsParams) (model.SessionRecordPage, error)
	Save(ctx context.Context, email string, input model.SessionInput, result model.LoadResult) (model.SessionRecord, error)
	Estimate(ctx context.Context, email string, input model.SessionInput) (model.SessionRecord, error)
}

type listSessionRecordsResponse struct {
	Data        []model.SessionRecord `json:"data"`
	TotalPages  int                   `json:"totalPages"`
	CurrentPage int                   `json:"currentPage"`
}

type saveSessionRecordRequest struct {
	Input  model.SessionInput `json:"input"`
	Result model.LoadResult   `json:"result"`
}

// RequestAuthenticator resolves the bearer token of a request into a
// context carrying the caller's user ID.
type RequestAuthenticator interface {
	Authenticate(r *http.Request) (context.Context, error)
}

// SessionRecord handles HTTP endpoints for study session records.
// Save and Estimate act on behalf of the authenticated user. List is open
// unless an owner check is configured.
type SessionRecord struct {
	recordService  SessionRecordService
	users          UserResolver
	contextManager model.ContextManager
	owner          RequestAuthenticator
	logger         *logger.Logger
}

// NewSessionRecord creates a new SessionRecord handler.
func NewSessionRecord(
	recordService SessionRecordService,
	users UserResolver,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *SessionRecord {
	return &SessionRecord{
		recordService:  recordService,
		users:          users,
		contextManager: contextManager,
		logger:         logger,
	}
}

// WithOwnerCheck makes List authenticate the request and reject emails other
// than the caller's with 403. Query validation still runs first.
func (h *SessionRecord) WithOwnerCheck(auth RequestAuthenticator) *SessionRecord {
	h.owner = auth
	return h
}

// List returns a page of records for the email in the query string.
func (h *SessionRecord) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	email := q.Get("email")
	if email == "" {
		handleError(w, h.logger, apperrors.NewErrEmailRequired())
		return
	}

	page, err := parsePositiveInt(q.Get("page"), "Invalid page")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), "Invalid limit")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if h.owner != nil {
		if err := h.checkOwner(r, email); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	result, err := h.recordService.List(r.Context(), model.ListSessionRecordsParams{
		Email: email,
		Page:  page,
		Limit: limit,
		Date:  q.Get("date"),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	records := result.Records
	if records == nil {
		records = []model.SessionRecord{}
	}

	WriteJSON(w, http.StatusOK, listSessionRecordsResponse{
		Data:        records,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	})
}

func (h *SessionRecord) checkOwner(r *http.Request, email string) error {
	ctx, err := h.owner.Authenticate(r)
	if err != nil {
		return err
	}
	user, err := currentUser(ctx, h.contextManager, h.users)
	if err != nil {
		return err
	}
	if user.Email != email {
		h.logger.Info("Session record handler: email mismatch",
			"caller", user.Email,
			"requested", email)
		return apperrors.NewErrForbidden()
	}
	return nil
}

// Save stores an already estimated session for the caller.
func (h *SessionRecord) Save(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	user, err := currentUser(r.Context(), h.contextManager, h.users)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	record, err := h.recordService.Save(r.Context(), user.Email, req.Input, req.Result)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, record)
}

// Estimate scores a session with the load estimator and stores the outcome.
func (h *SessionRecord) Estimate(w http.ResponseWriter, r *http.Request) {
	var input model.SessionInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, h.logger, err)
		return
	}

	user, err := currentUser(r.Context(), h.contextManager, h.users)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("Session record handler: estimating load",
		"email", user.Email,
		"subject", input.Subject)

	record, err := h.recordService.Estimate(r.Context(), user.Email, input)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, record)
}

// parsePositiveInt returns 0 for an empty value so the service applies its default.
func parsePositiveInt(raw, message string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.NewErrValidation(message)
	}
	return n, nil
}
