package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/brainlag-server/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.New(),
		Username:     "alice123!",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password_hash,\s*created_at,\s*updated_at\)`).
			WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(u.ID.String(), u.Username, u.Email, u.PasswordHash, nil, nil, now, now))

		saved, err := repo.Create(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, u.ID, saved.ID)
		assert.Equal(t, "alice123!", saved.Username)
		assert.Nil(t, saved.ResetTokenHash)
		assert.Nil(t, saved.ResetTokenExpiresAt)
	})

	t.Run("unique violation", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`INSERT\s+INTO\s+users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

		_, err := repo.Create(ctx, u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
		assert.NotErrorIs(t, err, model.ErrAlreadyExists)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		id := uuid.New()
		expires := time.Now().Add(15 * time.Minute).UTC()

		mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "alice", "a@x.com", "hash", []byte{1, 2}, expires, time.Now(), time.Now()))

		user, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, []byte{1, 2}, user.ResetTokenHash)
		require.NotNil(t, user.ResetTokenExpiresAt)
		assert.True(t, expires.Equal(*user.ResetTokenExpiresAt))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email`).
			WithArgs("ghost@x.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.GetByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT\s+EXISTS.*username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2`).
		WithArgs("alice", "a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_SetResetToken(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	hash := []byte("digest")
	expires := time.Now().Add(15 * time.Minute)

	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE\s+users\s+SET\s+reset_token_hash\s*=\s*\$2`).
			WithArgs(id, hash, expires).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetResetToken(ctx, id, hash, expires))
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE\s+users`).
			WithArgs(id, hash, expires).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetResetToken(ctx, id, hash, expires), model.ErrNotFound)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	hash := []byte("digest")

	t.Run("consumes token", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`(?s)UPDATE\s+users.*reset_token_hash\s*=\s*NULL.*WHERE\s+id\s*=\s*\$1\s+AND\s+reset_token_hash\s*=\s*\$3`).
			WithArgs(id, "newhash", hash).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdatePassword(ctx, id, "newhash", hash))
	})

	t.Run("token already consumed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE\s+users`).
			WithArgs(id, "newhash", hash).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdatePassword(ctx, id, "newhash", hash), model.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE\s+users`).WillReturnError(errors.New("boom"))

		err := repo.UpdatePassword(ctx, id, "newhash", hash)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrNotFound)
	})
}

func TestUserRepository_GetByResetTokenHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+reset_token_hash\s*=\s*\$1`).
		WithArgs([]byte("digest")).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByResetTokenHash(context.Background(), []byte("digest"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}
