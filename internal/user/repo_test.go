package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRegister(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", "Ada", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	u, err := repo.Register(context.Background(), "  Ada@Example.COM ", "Ada", "long-enough-pass")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_EmailTaken(t *testing.T) {
	repo, mock := newMockRepo(t)

	// ON CONFLICT DO NOTHING yields zero rows when the email exists.
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Register(context.Background(), "ada@example.com", "Ada", "long-enough-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Register(context.Background(), "not-an-email", "Ada", "long-enough-pass")
	assert.Error(t, err)

	_, err = repo.Register(context.Background(), "ada@example.com", "Ada", "short")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	repo, mock := newMockRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-bs"), bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"id", "email", "name", "password_hash", "is_active", "created_at"}

	mock.ExpectQuery(`SELECT id, email, name, password_hash, is_active, created_at`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ada@example.com", "Ada", string(hash), true, time.Now()))

	u, err := repo.Authenticate(context.Background(), "Ada@example.com", "correct-horse-bs")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo, mock := newMockRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"id", "email", "name", "password_hash", "is_active", "created_at"}

	mock.ExpectQuery(`SELECT id, email, name, password_hash, is_active, created_at`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ada@example.com", "Ada", string(hash), true, time.Now()))

	_, err = repo.Authenticate(context.Background(), "ada@example.com", "a-guess")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	repo, mock := newMockRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"id", "email", "name", "password_hash", "is_active", "created_at"}

	mock.ExpectQuery(`SELECT id, email, name, password_hash, is_active, created_at`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ada@example.com", "Ada", string(hash), false, time.Now()))

	_, err = repo.Authenticate(context.Background(), "ada@example.com", "the-real-password")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestValidateRefreshToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

	userID, err := repo.ValidateRefreshToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestValidateRefreshToken_ExpiredOrRevoked(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ValidateRefreshToken(context.Background(), "tok-stale")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
