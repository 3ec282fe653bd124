package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/dtroode/brainlag-server/internal/model"
)

var _ model.SessionRecordStore = (*SessionRecordStore)(nil)

// SessionRecordStore is an append-only slice of records per email.
type SessionRecordStore struct {
	mu      sync.RWMutex
	byEmail map[string][]model.SessionRecord
}

func NewSessionRecordStore() *SessionRecordStore {
	return &SessionRecordStore{byEmail: make(map[string][]model.SessionRecord)}
}

func (s *SessionRecordStore) Create(_ context.Context, record model.SessionRecord) (model.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.CreatedAt = record.CreatedAt.UTC()
	s.byEmail[record.Email] = append(s.byEmail[record.Email], record)
	return record, nil
}

func (s *SessionRecordStore) ListByEmail(_ context.Context, q model.SessionRecordQuery) ([]model.SessionRecord, int64, error) {
	if err := q.Check(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	matched := make([]model.SessionRecord, 0, len(s.byEmail[q.Email]))
	for _, r := range s.byEmail[q.Email] {
		if q.From != nil && r.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && r.CreatedAt.After(*q.To) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	// created_at DESC, id DESC
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []model.SessionRecord{}, total, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-q.Offset {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}
