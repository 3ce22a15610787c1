package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/selection-api/internal/models"
)

// ProfileRepository handles persistence of user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, about, picture_uri, availability, skills, prev_roles, credentials, times_selected, created_at, updated_at`

// GetByUser returns the profile owned by a user.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE user_id = $1", profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByUserIDs returns profiles for the given owners.
func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(userIDs))
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE user_id IN (%s)", profileColumns, strings.Join(placeholders, ","))
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Create persists a new profile record.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if profile.PrevRoles == nil {
		profile.PrevRoles = []string{}
	}
	if profile.Credentials == nil {
		profile.Credentials = []string{}
	}
	const query = `INSERT INTO profiles (id, user_id, about, picture_uri, availability, skills, prev_roles, credentials, times_selected, created_at, updated_at)
		VALUES (:id, :user_id, :about, :picture_uri, :availability, :skills, :prev_roles, :credentials, :times_selected, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update persists mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET about = :about, picture_uri = :picture_uri, availability = :availability,
		skills = :skills, prev_roles = :prev_roles, credentials = :credentials, updated_at = :updated_at
		WHERE user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// IncrementTimesSelected bumps the denormalized selection counter.
func (r *ProfileRepository) IncrementTimesSelected(ctx context.Context, userID string) error {
	const query = `UPDATE profiles SET times_selected = times_selected + 1, updated_at = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment times selected: %w", err)
	}
	return nil
}

// DecrementTimesSelected lowers the counter, floored at zero.
func (r *ProfileRepository) DecrementTimesSelected(ctx context.Context, userID string) error {
	const query = `UPDATE profiles SET times_selected = GREATEST(times_selected - 1, 0), updated_at = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("decrement times selected: %w", err)
	}
	return nil
}
