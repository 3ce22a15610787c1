package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/selection-api/internal/models"
)

// OrderRepository persists lecturer tutor display orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs the repository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, tutor_ids, created_at, updated_at`

// GetByUser returns the persisted order for a lecturer. sql.ErrNoRows when
// no reorder has ever been committed.
func (r *OrderRepository) GetByUser(ctx context.Context, userID string) (*models.TutorOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM tutor_orders WHERE user_id = $1", orderColumns)
	var order models.TutorOrder
	if err := r.db.GetContext(ctx, &order, query, userID); err != nil {
		return nil, err
	}
	return &order, nil
}

// Upsert fully overwrites the persisted order for a lecturer. The single-row
// upsert keeps the commit atomic with respect to its own record.
func (r *OrderRepository) Upsert(ctx context.Context, order *models.TutorOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.TutorIDs == nil {
		order.TutorIDs = []string{}
	}
	const query = `INSERT INTO tutor_orders (id, user_id, tutor_ids, created_at, updated_at)
		VALUES (:id, :user_id, :tutor_ids, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET tutor_ids = EXCLUDED.tutor_ids,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("upsert tutor order: %w", err)
	}
	return nil
}
