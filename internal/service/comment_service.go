package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type commentRepo interface {
	ListAll(ctx context.Context) ([]models.Comment, error)
	GetByPair(ctx context.Context, lecturerID, tutorID string) (*models.Comment, error)
	Save(ctx context.Context, comment *models.Comment) error
}

type commentUserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CommentService manages lecturer notes about tutors. A pair holds at most
// one live comment; saving replaces the previous one.
type CommentService struct {
	comments commentRepo
	users    commentUserRepo
	logger   *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments commentRepo, users commentUserRepo, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{comments: comments, users: users, logger: logger}
}

// Save writes the lecturer's comment about a tutor, replacing any previous
// comment for the pair.
func (s *CommentService) Save(ctx context.Context, lecturerID, tutorID, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment must not be empty")
	}
	if err := s.requireUser(ctx, lecturerID, "lecturer not found"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, tutorID, "tutor not found"); err != nil {
		return nil, err
	}

	comment := &models.Comment{LecturerID: lecturerID, TutorID: tutorID, Comment: text}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save comment")
	}
	s.logger.Info("comment saved",
		zap.String("lecturer_id", lecturerID),
		zap.String("tutor_id", tutorID))
	return comment, nil
}

// GetByPair returns the live comment for a (lecturer, tutor) pair.
func (s *CommentService) GetByPair(ctx context.Context, lecturerID, tutorID string) (*models.Comment, error) {
	comment, err := s.comments.GetByPair(ctx, lecturerID, tutorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	return comment, nil
}

// List returns every comment.
func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, nil
}

func (s *CommentService) requireUser(ctx context.Context, userID, missing string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, missing)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return nil
}
