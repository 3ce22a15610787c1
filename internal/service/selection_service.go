package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type selectionUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type selectionCourseRepo interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type selectionWriterRepo interface {
	GetByLecturer(ctx context.Context, lecturerID string) (*models.TutorSelection, error)
	Upsert(ctx context.Context, selection *models.TutorSelection) error
}

type applicationWriterRepo interface {
	GetByUser(ctx context.Context, userID string) (*models.CourseApplication, error)
	Upsert(ctx context.Context, application *models.CourseApplication) error
}

type selectionProfileRepo interface {
	IncrementTimesSelected(ctx context.Context, userID string) error
	DecrementTimesSelected(ctx context.Context, userID string) error
}

// SelectionService owns the writes to selection and application relations.
// Adding or removing a tutor is idempotent; the selection row is created
// lazily on first add and shrinks to an empty set rather than being deleted.
type SelectionService struct {
	users        selectionUserRepo
	courses      selectionCourseRepo
	selections   selectionWriterRepo
	applications applicationWriterRepo
	profiles     selectionProfileRepo
	cache        *CacheService
	logger       *zap.Logger
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(users selectionUserRepo, courses selectionCourseRepo, selections selectionWriterRepo, applications applicationWriterRepo, profiles selectionProfileRepo, cache *CacheService, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		users:        users,
		courses:      courses,
		selections:   selections,
		applications: applications,
		profiles:     profiles,
		cache:        cache,
		logger:       logger,
	}
}

// AddTutor appends a tutor to the lecturer's selection. Adding an id already
// present changes nothing; the selection counter on the tutor's profile only
// moves on a real membership change.
func (s *SelectionService) AddTutor(ctx context.Context, lecturerID, tutorID string) (*models.TutorSelection, error) {
	if err := s.requireUser(ctx, lecturerID, "lecturer not found"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, tutorID, "tutor not found"); err != nil {
		return nil, err
	}

	selection, err := s.selectionFor(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	for _, id := range selection.TutorIDs {
		if id == tutorID {
			return selection, nil
		}
	}

	selection.TutorIDs = append(selection.TutorIDs, tutorID)
	if err := s.selections.Upsert(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist tutor selection")
	}
	if err := s.profiles.IncrementTimesSelected(ctx, tutorID); err != nil {
		s.logger.Warn("failed to increment selection counter",
			zap.String("tutor_id", tutorID), zap.Error(err))
	}
	s.invalidateDashboards(ctx)
	s.logger.Info("tutor added to selection",
		zap.String("lecturer_id", lecturerID),
		zap.String("tutor_id", tutorID))
	return selection, nil
}

// RemoveTutor drops a tutor from the lecturer's selection. Removing an
// absent id changes nothing.
func (s *SelectionService) RemoveTutor(ctx context.Context, lecturerID, tutorID string) (*models.TutorSelection, error) {
	if err := s.requireUser(ctx, lecturerID, "lecturer not found"); err != nil {
		return nil, err
	}

	selection, err := s.selectionFor(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	remaining := make([]string, 0, len(selection.TutorIDs))
	removed := false
	for _, id := range selection.TutorIDs {
		if id == tutorID {
			removed = true
			continue
		}
		remaining = append(remaining, id)
	}
	if !removed {
		return selection, nil
	}

	selection.TutorIDs = remaining
	if err := s.selections.Upsert(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist tutor selection")
	}
	if err := s.profiles.DecrementTimesSelected(ctx, tutorID); err != nil {
		s.logger.Warn("failed to decrement selection counter",
			zap.String("tutor_id", tutorID), zap.Error(err))
	}
	s.invalidateDashboards(ctx)
	s.logger.Info("tutor removed from selection",
		zap.String("lecturer_id", lecturerID),
		zap.String("tutor_id", tutorID))
	return selection, nil
}

// SetCandidateApplications replaces a candidate's applied-course set in full.
// Unknown course ids are rejected before any write happens.
func (s *SelectionService) SetCandidateApplications(ctx context.Context, candidateID string, courseIDs []string) (*models.CourseApplication, error) {
	if err := s.requireUser(ctx, candidateID, "candidate not found"); err != nil {
		return nil, err
	}

	deduped := make([]string, 0, len(courseIDs))
	seen := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	if len(deduped) > 0 {
		courses, err := s.courses.ListByIDs(ctx, deduped)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
		}
		known := make(map[string]struct{}, len(courses))
		for _, course := range courses {
			known[course.ID] = struct{}{}
		}
		for _, id := range deduped {
			if _, ok := known[id]; !ok {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
			}
		}
	}

	application, err := s.applications.GetByUser(ctx, candidateID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
		}
		application = &models.CourseApplication{UserID: candidateID}
	}
	application.CourseIDs = deduped
	if err := s.applications.Upsert(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist application")
	}
	s.invalidateDashboards(ctx)
	s.logger.Info("candidate applications replaced",
		zap.String("candidate_id", candidateID),
		zap.Int("course_count", len(deduped)))
	return application, nil
}

// selectionFor loads the lecturer's selection row, materialising an empty one
// when it was never created.
func (s *SelectionService) selectionFor(ctx context.Context, lecturerID string) (*models.TutorSelection, error) {
	selection, err := s.selections.GetByLecturer(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.TutorSelection{LecturerID: lecturerID, TutorIDs: []string{}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor selection")
	}
	return selection, nil
}

func (s *SelectionService) requireUser(ctx context.Context, userID, missing string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, missing)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return nil
}

func (s *SelectionService) invalidateDashboards(ctx context.Context) {
	if err := s.cache.InvalidatePattern(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
