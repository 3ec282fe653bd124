package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionRecordStore defines persistence operations for study session records.
// Records are append-only.
type SessionRecordStore interface {
	Create(ctx context.Context, record SessionRecord) (SessionRecord, error)
	// ListByEmail returns one page of records sorted by creation time descending
	// together with the total number of records matching the query.
	ListByEmail(ctx context.Context, query SessionRecordQuery) ([]SessionRecord, int64, error)
}

// SessionRecord is an estimated study session owned by a user email.
type SessionRecord struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	Input     SessionInput `json:"input"`
	Result    LoadResult   `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
}

// SessionRecordQuery selects records for one email. From and To bound
// created_at inclusively when set.
type SessionRecordQuery struct {
	Email  string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// Check rejects a negative offset or limit.
func (q SessionRecordQuery) Check() error {
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("offset %d, limit %d: %w", q.Offset, q.Limit, ErrInvalidQuery)
	}
	return nil
}

// ListSessionRecordsParams contains raw list parameters as received from callers.
// Zero Page and Limit select the defaults; Date is an optional YYYY-MM-DD day.
type ListSessionRecordsParams struct {
	Email string
	Page  int
	Limit int
	Date  string
}

// SessionRecordPage is one page of session records.
type SessionRecordPage struct {
	Records     []SessionRecord
	Total       int64
	TotalPages  int
	CurrentPage int
}

// Subjects understood by the load estimator. Anything else is treated as SubjectOther.
const (
	SubjectCoding  = "Coding"
	SubjectMath    = "Math"
	SubjectReading = "Reading"
	SubjectScience = "Science"
	SubjectOther   = "Other"
)

// SessionInput describes one day of study as submitted for estimation.
type SessionInput struct {
	TotalTime       int    `json:"total_time"`
	NumSessions     int    `json:"num_sessions"`
	Subject         string `json:"subject"`
	Focus           int    `json:"focus"`
	Fatigue         int    `json:"fatigue"`
	LateNight       Flag   `json:"late_night"`
	DurationMissing int    `json:"duration_missing"`

	// Extra holds unknown keys so they survive a decode/encode cycle.
	Extra map[string]json.RawMessage `json:"-"`
}

var sessionInputFields = []string{"total_time", "num_sessions", "subject", "focus", "fatigue", "late_night", "duration_missing"}

func (in *SessionInput) UnmarshalJSON(data []byte) error {
	type plain SessionInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, sessionInputFields)
	if err != nil {
		return err
	}
	*in = SessionInput(p)
	in.Extra = extra
	return nil
}

func (in SessionInput) MarshalJSON() ([]byte, error) {
	type plain SessionInput
	return marshalWithExtra(plain(in), in.Extra)
}

// LoadStatus is the categorical output of the load estimator.
type LoadStatus string

const (
	LoadStatusLow    LoadStatus = "low"
	LoadStatusMedium LoadStatus = "medium"
	LoadStatusHigh   LoadStatus = "high"
)

// Valid reports whether s is one of the known statuses.
func (s LoadStatus) Valid() bool {
	switch s {
	case LoadStatusLow, LoadStatusMedium, LoadStatusHigh:
		return true
	}
	return false
}

// LoadResult is the estimator output, persisted verbatim.
type LoadResult struct {
	LoadScore      float64    `json:"load_score"`
	Status         LoadStatus `json:"status"`
	Message        string     `json:"message,omitempty"`
	Recommendation string     `json:"recommendation"`

	Extra map[string]json.RawMessage `json:"-"`
}

var loadResultFields = []string{"load_score", "status", "message", "recommendation"}

func (r *LoadResult) UnmarshalJSON(data []byte) error {
	type plain LoadResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, loadResultFields)
	if err != nil {
		return err
	}
	*r = LoadResult(p)
	r.Extra = extra
	return nil
}

func (r LoadResult) MarshalJSON() ([]byte, error) {
	type plain LoadResult
	return marshalWithExtra(plain(r), r.Extra)
}

// Flag is a boolean that also accepts 0 and 1 on decode.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// Int returns 1 for a set flag and 0 otherwise.
func (f Flag) Int() int {
	if f {
		return 1
	}
	return 0
}

func unknownFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}

// LoadEstimator scores a study session.
type LoadEstimator interface {
	Estimate(ctx context.Context, input SessionInput) (LoadResult, error)
}
