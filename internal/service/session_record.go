package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

const (
	dateLayout          = "2006-01-02"
	defaultPage         = 1
	defaultPageSize     = 5
	defaultMaxPageSize  = 100
	lastInstantOfTheDay = 24*time.Hour - time.Millisecond
)

// SessionRecordConfig bounds list pagination.
type SessionRecordConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type SessionRecord struct {
	store     model.SessionRecordStore
	estimator model.LoadEstimator
	logger    *logger.Logger
	cfg       SessionRecordConfig
	now       func() time.Time
}

func NewSessionRecord(
	store model.SessionRecordStore,
	estimator model.LoadEstimator,
	logger *logger.Logger,
	cfg SessionRecordConfig,
) *SessionRecord {
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = max(defaultMaxPageSize, cfg.DefaultPageSize)
	}
	return &SessionRecord{
		store:     store,
		estimator: estimator,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns one page of the records for params.Email, newest first. A
// non-empty Date restricts results to that UTC calendar day, both ends inclusive.
func (s *SessionRecord) List(ctx context.Context, params model.ListSessionRecordsParams) (model.SessionRecordPage, error) {
	if params.Email == "" {
		return model.SessionRecordPage{}, apperrors.NewErrEmailRequired()
	}

	page := params.Page
	switch {
	case page == 0:
		page = defaultPage
	case page < 0:
		return model.SessionRecordPage{}, apperrors.NewErrValidation("Invalid page")
	}

	limit := params.Limit
	switch {
	case limit == 0:
		limit = s.cfg.DefaultPageSize
	case limit < 0:
		return model.SessionRecordPage{}, apperrors.NewErrValidation("Invalid limit")
	case limit > s.cfg.MaxPageSize:
		limit = s.cfg.MaxPageSize
	}

	query := model.SessionRecordQuery{
		Email:  params.Email,
		Offset: pageOffset(page, limit),
		Limit:  limit,
	}

	if params.Date != "" {
		day, err := time.ParseInLocation(dateLayout, params.Date, time.UTC)
		if err != nil {
			return model.SessionRecordPage{}, apperrors.NewErrValidation("Invalid date, expected YYYY-MM-DD")
		}
		end := day.Add(lastInstantOfTheDay)
		query.From = &day
		query.To = &end
	}

	records, total, err := s.store.ListByEmail(ctx, query)
	if err != nil {
		s.logger.Error("Session record service: failed to list records",
			"email", params.Email,
			"error", err.Error())
		return model.SessionRecordPage{}, fmt.Errorf("failed to list session records: %w", err)
	}

	return model.SessionRecordPage{
		Records:     records,
		Total:       total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
	}, nil
}

// pageOffset returns the first row of page. A page whose offset does not
// fit in an int lies past any stored data and maps to math.MaxInt.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Save appends an already estimated session. The creation time is assigned here.
func (s *SessionRecord) Save(ctx context.Context, email string, input model.SessionInput, result model.LoadResult) (model.SessionRecord, error) {
	if email == "" {
		return model.SessionRecord{}, apperrors.NewErrEmailRequired()
	}
	if err := validateSessionInput(input); err != nil {
		return model.SessionRecord{}, err
	}
	if !result.Status.Valid() {
		return model.SessionRecord{}, apperrors.NewErrValidation("Invalid result status")
	}

	return s.create(ctx, email, input, result)
}

// Estimate scores input with the external estimator and stores the outcome verbatim.
func (s *SessionRecord) Estimate(ctx context.Context, email string, input model.SessionInput) (model.SessionRecord, error) {
	if email == "" {
		return model.SessionRecord{}, apperrors.NewErrEmailRequired()
	}
	if err := validateSessionInput(input); err != nil {
		return model.SessionRecord{}, err
	}

	result, err := s.estimator.Estimate(ctx, input)
	if err != nil {
		s.logger.Error("Session record service: estimation failed",
			"email", email,
			"error", err.Error())
		return model.SessionRecord{}, apperrors.NewErrEstimatorUnavailable(err)
	}

	return s.create(ctx, email, input, result)
}

func (s *SessionRecord) create(ctx context.Context, email string, input model.SessionInput, result model.LoadResult) (model.SessionRecord, error) {
	record, err := s.store.Create(ctx, model.SessionRecord{
		ID:        uuid.New(),
		Email:     email,
		Input:     input,
		Result:    result,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("Session record service: failed to save record",
			"email", email,
			"error", err.Error())
		return model.SessionRecord{}, fmt.Errorf("failed to save session record: %w", err)
	}

	s.logger.Info("Session record service: record saved",
		"email", email,
		"record_id", record.ID,
		"status", record.Result.Status)

	return record, nil
}

func validateSessionInput(in model.SessionInput) error {
	var reason string
	switch {
	case in.Subject == "":
		reason = "subject is required"
	case in.TotalTime < 0:
		reason = "total_time must not be negative"
	case in.NumSessions < 0:
		reason = "num_sessions must not be negative"
	case in.Focus < 1 || in.Focus > 5:
		reason = "focus must be between 1 and 5"
	case in.Fatigue < 1 || in.Fatigue > 5:
		reason = "fatigue must be between 1 and 5"
	case in.DurationMissing != 0 && in.DurationMissing != 1:
		reason = "duration_missing must be 0 or 1"
	default:
		return nil
	}

	return apperrors.NewErrValidation("Invalid session input: " + reason)
}
