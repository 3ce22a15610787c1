package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/selection-api/internal/models"
)

// SelectionRepository persists lecturer tutor selections.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

const selectionColumns = `id, lecturer_id, tutor_ids, created_at, updated_at`

// ListAll returns every selection row in relation order.
func (r *SelectionRepository) ListAll(ctx context.Context) ([]models.TutorSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM tutor_selections ORDER BY created_at, id", selectionColumns)
	var selections []models.TutorSelection
	if err := r.db.SelectContext(ctx, &selections, query); err != nil {
		return nil, fmt.Errorf("list tutor selections: %w", err)
	}
	return selections, nil
}

// ListByLecturer returns the selection rows for a lecturer. The intended
// cardinality is one; an empty result means no selection yet.
func (r *SelectionRepository) ListByLecturer(ctx context.Context, lecturerID string) ([]models.TutorSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM tutor_selections WHERE lecturer_id = $1 ORDER BY created_at, id", selectionColumns)
	var selections []models.TutorSelection
	if err := r.db.SelectContext(ctx, &selections, query, lecturerID); err != nil {
		return nil, fmt.Errorf("list selections by lecturer: %w", err)
	}
	return selections, nil
}

// GetByLecturer returns the canonical selection row for a lecturer.
// sql.ErrNoRows when the row was never created.
func (r *SelectionRepository) GetByLecturer(ctx context.Context, lecturerID string) (*models.TutorSelection, error) {
	query := fmt.Sprintf("SELECT %s FROM tutor_selections WHERE lecturer_id = $1 ORDER BY created_at, id LIMIT 1", selectionColumns)
	var selection models.TutorSelection
	if err := r.db.GetContext(ctx, &selection, query, lecturerID); err != nil {
		return nil, err
	}
	return &selection, nil
}

// Upsert creates or fully replaces a lecturer's selection set.
func (r *SelectionRepository) Upsert(ctx context.Context, selection *models.TutorSelection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = now
	}
	selection.UpdatedAt = now
	if selection.TutorIDs == nil {
		selection.TutorIDs = []string{}
	}
	const query = `INSERT INTO tutor_selections (id, lecturer_id, tutor_ids, created_at, updated_at)
		VALUES (:id, :lecturer_id, :tutor_ids, :created_at, :updated_at)
		ON CONFLICT (lecturer_id) DO UPDATE
		SET tutor_ids = EXCLUDED.tutor_ids,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("upsert tutor selection: %w", err)
	}
	return nil
}
