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

func TestOrderGetByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "tutor_ids", "created_at", "updated_at"}).
		AddRow("ord-1", "lect-1", "{tut-2,tut-1}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tutor_orders WHERE user_id = $1")).
		WithArgs("lect-1").
		WillReturnRows(rows)

	order, err := repo.GetByUser(context.Background(), "lect-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tut-2", "tut-1"}, []string(order.TutorIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByUserNeverCommitted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectQuery("FROM tutor_orders WHERE user_id").
		WithArgs("lect-new").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUser(context.Background(), "lect-new")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOrderUpsertOverwrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOrderRepository(db)

	mock.ExpectExec("INSERT INTO tutor_orders").WillReturnResult(sqlmock.NewResult(0, 1))

	order := &models.TutorOrder{UserID: "lect-1", TutorIDs: []string{"tut-2", "tut-1"}}
	err := repo.Upsert(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
