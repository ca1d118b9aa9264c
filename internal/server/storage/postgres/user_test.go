package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/posauth/internal/models"
	"github.com/iudanet/posauth/internal/server/storage"
)

var userColumns = []string{"id", "username", "password_hash", "role", "created_at"}

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func testUser() *models.User {
	return &models.User{
		ID:           "7d1f1b52-2a9c-4d8e-9a53-0b4c8d1e2f30",
		Username:     "alice",
		PasswordHash: "$2a$04$hash",
		Role:         "cashier",
		CreatedAt:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

const insertQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*username,\s*password_hash,\s*role,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

func TestCreateUser_Success(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).
		WithArgs(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).
		WithArgs(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := s.CreateUser(context.Background(), u)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DBError(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	err := s.CreateUser(context.Background(), u)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserAlreadyExists)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetUserByUsername(t *testing.T) {
	s, mock := newStorageWithMock(t)
	u := testUser()

	q := `(?s)SELECT\s+id,\s*username,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1`
	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt))

	got, err := s.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+username`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	got, err := s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Nil(t, got)
}

func TestGetUserByID_DBError(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("some-id").
		WillReturnError(errors.New("connection reset"))

	_, err := s.GetUserByID(context.Background(), "some-id")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserNotFound)
	assert.Contains(t, err.Error(), "failed to get user")
}

func TestStorage_ImplementsUserStorage(t *testing.T) {
	var _ storage.UserStorage = (*Storage)(nil)
}
