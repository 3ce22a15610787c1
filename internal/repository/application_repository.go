package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/selection-api/internal/models"
)

// ApplicationRepository persists candidate course applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, course_ids, created_at, updated_at`

// ListAll returns every application row in relation order. Duplicate rows
// for a user are returned as-is; aggregations dedupe on read.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.CourseApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM course_applications ORDER BY created_at, id", applicationColumns)
	var applications []models.CourseApplication
	if err := r.db.SelectContext(ctx, &applications, query); err != nil {
		return nil, fmt.Errorf("list course applications: %w", err)
	}
	return applications, nil
}

// GetByUser returns the application row for a user. sql.ErrNoRows when the
// row was never created; callers treat that as the empty set.
func (r *ApplicationRepository) GetByUser(ctx context.Context, userID string) (*models.CourseApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM course_applications WHERE user_id = $1 ORDER BY created_at, id LIMIT 1", applicationColumns)
	var application models.CourseApplication
	if err := r.db.GetContext(ctx, &application, query, userID); err != nil {
		return nil, err
	}
	return &application, nil
}

// Upsert creates or fully replaces a user's application set.
func (r *ApplicationRepository) Upsert(ctx context.Context, application *models.CourseApplication) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if application.CreatedAt.IsZero() {
		application.CreatedAt = now
	}
	application.UpdatedAt = now
	if application.CourseIDs == nil {
		application.CourseIDs = []string{}
	}
	const query = `INSERT INTO course_applications (id, user_id, course_ids, created_at, updated_at)
		VALUES (:id, :user_id, :course_ids, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET course_ids = EXCLUDED.course_ids,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("upsert course application: %w", err)
	}
	return nil
}
