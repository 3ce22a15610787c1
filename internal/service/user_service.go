package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type userWriterRepo interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	Delete(ctx context.Context, id string) error
}

type userProfileRepo interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type userApplicationRepo interface {
	Upsert(ctx context.Context, application *models.CourseApplication) error
}

const defaultPictureURI = "/static/avatars/default.png"

// Roles that self-registration may claim. Admin accounts are provisioned
// out of band.
var registrableRoles = map[models.UserRole]struct{}{
	models.RoleCandidate: {},
	models.RoleTutor:     {},
	models.RoleLecturer:  {},
}

// UserService handles account lifecycle and profile management.
type UserService struct {
	users        userWriterRepo
	profiles     userProfileRepo
	applications userApplicationRepo
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userWriterRepo, profiles userProfileRepo, applications userApplicationRepo, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:        users,
		profiles:     profiles,
		applications: applications,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Register creates a new account with an empty profile and an empty course
// application row, so later reads never have to special-case their absence.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	role := models.UserRole(strings.ToUpper(req.Role))
	if _, ok := registrableRoles[role]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be one of CANDIDATE, TUTOR, LECTURER")
	}
	if !lettersOnly(req.FirstName) || !lettersOnly(req.LastName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "names may contain letters only")
	}
	if !strongPassword(req.Password) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password must be at least 8 characters with upper case, lower case and a digit")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	profile := &models.Profile{UserID: user.ID, PictureURI: defaultPictureURI}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	if err := s.applications.Upsert(ctx, &models.CourseApplication{UserID: user.ID, CourseIDs: []string{}}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application record")
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Get returns a user with their profile.
func (s *UserService) Get(ctx context.Context, id string) (*dto.Candidate, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUser(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return &dto.Candidate{User: *user, Profile: profile}, nil
}

// Update applies partial identity changes to a user.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
			} else if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		if !lettersOnly(*req.FirstName) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "names may contain letters only")
		}
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if !lettersOnly(*req.LastName) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "names may contain letters only")
		}
		user.LastName = *req.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// SetBlocked blocks or unblocks an account.
func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.users.SetBlocked(ctx, id, blocked); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blocked flag")
	}
	s.logger.Info("user blocked flag changed", zap.String("user_id", id), zap.Bool("blocked", blocked))
	return nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// UpdateProfile applies partial changes to a user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*models.Profile, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if req.About != nil {
		profile.About = *req.About
	}
	if req.PictureURI != nil {
		profile.PictureURI = *req.PictureURI
	}
	if req.Availability != nil {
		profile.Availability = *req.Availability
	}
	if req.Skills != nil {
		profile.Skills = req.Skills
	}
	if req.PrevRoles != nil {
		profile.PrevRoles = req.PrevRoles
	}
	if req.Credentials != nil {
		profile.Credentials = req.Credentials
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// TutorProfiles returns the profiles for a set of tutors, keyed by user id.
func (s *UserService) TutorProfiles(ctx context.Context, tutorIDs []string) (map[string]*models.Profile, error) {
	if len(tutorIDs) == 0 {
		return map[string]*models.Profile{}, nil
	}
	profiles, err := s.profiles.ListByUserIDs(ctx, tutorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profiles")
	}
	byUser := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	return byUser, nil
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// lettersOnly accepts unicode letters plus the separators that occur in real
// names.
func lettersOnly(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			continue
		}
		return false
	}
	return true
}

func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
