package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/selection-api/internal/models"
)

// CommentRepository persists lecturer comments about tutors.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, lecturer_id, tutor_id, comment, created_at, updated_at`

// ListAll returns every comment.
func (r *CommentRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	query := fmt.Sprintf("SELECT %s FROM comments ORDER BY created_at, id", commentColumns)
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// GetByPair returns the live comment for a (lecturer, tutor) pair.
func (r *CommentRepository) GetByPair(ctx context.Context, lecturerID, tutorID string) (*models.Comment, error) {
	query := fmt.Sprintf("SELECT %s FROM comments WHERE lecturer_id = $1 AND tutor_id = $2", commentColumns)
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, lecturerID, tutorID); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Save writes a comment for a pair, retiring any previous comment for the
// same pair. Identity is the pair, not the surrogate id.
func (r *CommentRepository) Save(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	const query = `INSERT INTO comments (id, lecturer_id, tutor_id, comment, created_at, updated_at)
		VALUES (:id, :lecturer_id, :tutor_id, :comment, :created_at, :updated_at)
		ON CONFLICT (lecturer_id, tutor_id) DO UPDATE
		SET comment = EXCLUDED.comment,
		    created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}
