package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kushal-g/llm-chat-apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "username", "password", "created_at"}).
		AddRow("USER_1", "alice", "c2FsdA==:a2V5", now)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "USER_1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "c2FsdA==:a2V5", user.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "password", "created_at"}))

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("USER_1", "alice", "c2FsdA==:a2V5", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.Create(context.Background(), types.User{
		ID:           "USER_1",
		Username:     "alice",
		PasswordHash: "c2FsdA==:a2V5",
	})
	require.NoError(t, err)
	assert.Equal(t, "USER_1", user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
