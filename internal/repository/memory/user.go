// Package memory implements process-local stores for development and tests.
package memory

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/brainlag-server/internal/model"
)

var _ model.UserStore = (*UserStore)(nil)

// UserStore keeps users in a map guarded by a RWMutex. Username and email
// uniqueness is checked under the write lock.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]model.User), now: time.Now}
}

func (s *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return model.User{}, model.ErrAlreadyExists
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return model.User{}, model.ErrAlreadyExists
		}
	}

	s.users[user.ID] = user
	return cloneUser(user), nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *UserStore) GetByResetTokenHash(_ context.Context, tokenHash []byte) (model.User, error) {
	if len(tokenHash) == 0 {
		return model.User{}, model.ErrNotFound
	}
	return s.find(func(u model.User) bool { return bytes.Equal(u.ResetTokenHash, tokenHash) })
}

func (s *UserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := s.find(func(u model.User) bool { return u.Username == username || u.Email == email })
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserStore) SetResetToken(_ context.Context, id uuid.UUID, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.ResetTokenHash = bytes.Clone(tokenHash)
	u.ResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, tokenHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || len(u.ResetTokenHash) == 0 || !bytes.Equal(u.ResetTokenHash, tokenHash) {
		return model.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *UserStore) find(match func(model.User) bool) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func cloneUser(u model.User) model.User {
	u.ResetTokenHash = bytes.Clone(u.ResetTokenHash)
	if u.ResetTokenExpiresAt != nil {
		exp := *u.ResetTokenExpiresAt
		u.ResetTokenExpiresAt = &exp
	}
	return u
}
