package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type courseWriterRepo interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	AssignLecturer(ctx context.Context, courseID, lecturerID string) error
	Delete(ctx context.Context, id string) error
}

type courseUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CourseService handles the course catalogue.
type CourseService struct {
	courses  courseWriterRepo
	users    courseUserRepo
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseWriterRepo, users courseUserRepo, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, users: users, validate: validator.New(), logger: logger}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course, optionally owned by a lecturer from the start.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.LecturerID != nil {
		if err := s.requireLecturer(ctx, *req.LecturerID); err != nil {
			return nil, err
		}
	}

	course := &models.Course{Code: req.Code, Title: req.Title, LecturerID: req.LecturerID}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update applies partial changes to a course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// AssignLecturer sets the owning lecturer of a course. Only users holding
// the lecturer role may own courses.
func (s *CourseService) AssignLecturer(ctx context.Context, courseID, lecturerID string) (*models.Course, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLecturer(ctx, lecturerID); err != nil {
		return nil, err
	}
	if err := s.courses.AssignLecturer(ctx, courseID, lecturerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign lecturer")
	}
	course.LecturerID = &lecturerID
	s.logger.Info("lecturer assigned to course",
		zap.String("course_id", courseID),
		zap.String("lecturer_id", lecturerID))
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

func (s *CourseService) requireLecturer(ctx context.Context, lecturerID string) error {
	user, err := s.users.FindByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	if user.Role != models.RoleLecturer {
		return appErrors.Clone(appErrors.ErrValidation, "user is not a lecturer")
	}
	return nil
}
