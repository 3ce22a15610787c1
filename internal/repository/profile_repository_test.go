package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileIncrementTimesSelected(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET times_selected = times_selected + 1, updated_at = $2 WHERE user_id = $1")).
		WithArgs("tut-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementTimesSelected(context.Background(), "tut-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileDecrementFloorsAtZero(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET times_selected = GREATEST(times_selected - 1, 0), updated_at = $2 WHERE user_id = $1")).
		WithArgs("tut-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DecrementTimesSelected(context.Background(), "tut-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileListByUserIDsEmptyInput(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	profiles, err := repo.ListByUserIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, profiles)
}
