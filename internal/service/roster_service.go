package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type rosterUserRepo interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type rosterCourseRepo interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type rosterApplicationRepo interface {
	ListAll(ctx context.Context) ([]models.CourseApplication, error)
}

type rosterSelectionRepo interface {
	ListByLecturer(ctx context.Context, lecturerID string) ([]models.TutorSelection, error)
}

type rosterProfileRepo interface {
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error)
}

// RosterService answers which candidates applied to which courses, and which
// of those candidates a given lecturer can select from. All reads are
// side-effect-free and treat missing relation rows as empty sets.
type RosterService struct {
	users        rosterUserRepo
	courses      rosterCourseRepo
	applications rosterApplicationRepo
	selections   rosterSelectionRepo
	profiles     rosterProfileRepo
	logger       *zap.Logger
}

// NewRosterService constructs a RosterService.
func NewRosterService(users rosterUserRepo, courses rosterCourseRepo, applications rosterApplicationRepo, selections rosterSelectionRepo, profiles rosterProfileRepo, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		users:        users,
		courses:      courses,
		applications: applications,
		selections:   selections,
		profiles:     profiles,
		logger:       logger,
	}
}

// RosterPerCourse lists, for every course, the candidates who applied to it.
// Courses with zero applicants are included with an empty list; candidates
// appear in the order their application rows were discovered.
func (s *RosterService) RosterPerCourse(ctx context.Context) ([]dto.CourseRoster, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	applications, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	candidates, err := s.candidateSet(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(courses))
	for _, course := range courses {
		known[course.ID] = struct{}{}
	}

	buckets := make(map[string][]string, len(courses))
	seen := make(map[string]map[string]struct{}, len(courses))
	for _, application := range applications {
		if _, ok := candidates[application.UserID]; !ok {
			continue
		}
		for _, courseID := range application.CourseIDs {
			if _, ok := known[courseID]; !ok {
				continue
			}
			if seen[courseID] == nil {
				seen[courseID] = make(map[string]struct{})
			}
			if _, dup := seen[courseID][application.UserID]; dup {
				continue
			}
			seen[courseID][application.UserID] = struct{}{}
			buckets[courseID] = append(buckets[courseID], application.UserID)
		}
	}

	rosters := make([]dto.CourseRoster, 0, len(courses))
	for _, course := range courses {
		applicants := buckets[course.ID]
		if applicants == nil {
			applicants = []string{}
		}
		rosters = append(rosters, dto.CourseRoster{
			CourseID:   course.ID,
			Code:       course.Code,
			Title:      course.Title,
			Candidates: applicants,
		})
	}
	return rosters, nil
}

// ChosenTutorPool returns the union of the lecturer's selection rows. Zero
// rows yield an empty pool, never an error.
func (s *RosterService) ChosenTutorPool(ctx context.Context, lecturerID string) ([]string, error) {
	selections, err := s.selections.ListByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor selections")
	}

	pool := make([]string, 0)
	seen := make(map[string]struct{})
	for _, selection := range selections {
		for _, tutorID := range selection.TutorIDs {
			if _, dup := seen[tutorID]; dup {
				continue
			}
			seen[tutorID] = struct{}{}
			pool = append(pool, tutorID)
		}
	}
	return pool, nil
}

// UniqueCandidatePool returns the deduplicated candidates who applied to any
// course owned by the lecturer, enriched with profile data. This is the pool
// the lecturer selects from, as opposed to ChosenTutorPool which is who they
// picked.
func (s *RosterService) UniqueCandidatePool(ctx context.Context, lecturerID string) ([]dto.Candidate, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	owned := make(map[string]struct{})
	for _, course := range courses {
		if course.LecturerID != nil && *course.LecturerID == lecturerID {
			owned[course.ID] = struct{}{}
		}
	}

	applications, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	users, err := s.users.List(ctx, models.UserFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	usersByID := make(map[string]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	ordered := make([]string, 0)
	seen := make(map[string]struct{})
	for _, application := range applications {
		user, ok := usersByID[application.UserID]
		if !ok || user.Role != models.RoleCandidate {
			continue
		}
		if _, dup := seen[user.ID]; dup {
			continue
		}
		for _, courseID := range application.CourseIDs {
			if _, owns := owned[courseID]; owns {
				seen[user.ID] = struct{}{}
				ordered = append(ordered, user.ID)
				break
			}
		}
	}

	profilesByUser, err := s.profilesByUser(ctx, ordered)
	if err != nil {
		return nil, err
	}

	pool := make([]dto.Candidate, 0, len(ordered))
	for _, userID := range ordered {
		pool = append(pool, dto.Candidate{
			User:    usersByID[userID],
			Profile: profilesByUser[userID],
		})
	}
	return pool, nil
}

func (s *RosterService) candidateSet(ctx context.Context) (map[string]struct{}, error) {
	role := models.RoleCandidate
	users, err := s.users.List(ctx, models.UserFilter{Role: &role})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}
	set := make(map[string]struct{}, len(users))
	for _, user := range users {
		set[user.ID] = struct{}{}
	}
	return set, nil
}

func (s *RosterService) profilesByUser(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	if len(userIDs) == 0 {
		return map[string]*models.Profile{}, nil
	}
	profiles, err := s.profiles.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profiles")
	}
	byUser := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	return byUser, nil
}
