package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/selection-api/internal/models"
)

func TestApplicationGetByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "course_ids", "created_at", "updated_at"}).
		AddRow("app-1", "cand-1", "{course-a,course-b}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_applications WHERE user_id = $1 ORDER BY created_at, id LIMIT 1")).
		WithArgs("cand-1").
		WillReturnRows(rows)

	application, err := repo.GetByUser(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"course-a", "course-b"}, []string(application.CourseIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationGetByUserMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("FROM course_applications WHERE user_id").
		WithArgs("cand-ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUser(context.Background(), "cand-ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationUpsertDefaultsEmptySet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO course_applications").WillReturnResult(sqlmock.NewResult(0, 1))

	application := &models.CourseApplication{UserID: "cand-1"}
	err := repo.Upsert(context.Background(), application)
	require.NoError(t, err)
	assert.NotEmpty(t, application.ID)
	assert.NotNil(t, application.CourseIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
