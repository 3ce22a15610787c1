package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/selection-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(ids ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "role", "is_blocked", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, id+"@example.com", "hash", "First", "Last", string(models.RoleCandidate), false, now, now)
	}
	return rows
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, first_name, last_name, role, is_blocked, created_at, updated_at FROM users WHERE email = $1")).
		WithArgs("user-1@example.com").
		WillReturnRows(userRows("user-1"))

	user, err := repo.FindByEmail(context.Background(), "user-1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role = $1 ORDER BY created_at, id")).
		WithArgs(string(models.RoleCandidate)).
		WillReturnRows(userRows("cand-1", "cand-2"))

	role := models.RoleCandidate
	users, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListByIDsEmptyInput(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	users, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, users)
}

func TestUserCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Email: "a@example.com", PasswordHash: "hash", Role: models.RoleCandidate}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserSetBlocked(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_blocked = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("user-1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetBlocked(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
