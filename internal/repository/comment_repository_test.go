package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/selection-api/internal/models"
)

func TestCommentGetByPair(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "lecturer_id", "tutor_id", "comment", "created_at", "updated_at"}).
		AddRow("com-1", "lect-1", "tut-1", "solid work", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM comments WHERE lecturer_id = $1 AND tutor_id = $2")).
		WithArgs("lect-1", "tut-1").
		WillReturnRows(rows)

	comment, err := repo.GetByPair(context.Background(), "lect-1", "tut-1")
	require.NoError(t, err)
	assert.Equal(t, "solid work", comment.Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentSaveUpserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(0, 1))

	comment := &models.Comment{LecturerID: "lect-1", TutorID: "tut-1", Comment: "note"}
	err := repo.Save(context.Background(), comment)
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
