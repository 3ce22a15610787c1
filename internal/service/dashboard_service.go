package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

const (
	cacheKeyCandidatesPerCourse = "dash:candidates-per-course"
	cacheKeyChosenNone          = "dash:chosen-none"
	cacheKeyChosenAboveFmt      = "dash:chosen-above:%d"
)

type dashboardUserRepo interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type dashboardCourseRepo interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type dashboardApplicationRepo interface {
	ListAll(ctx context.Context) ([]models.CourseApplication, error)
}

type dashboardSelectionRepo interface {
	ListAll(ctx context.Context) ([]models.TutorSelection, error)
}

type dashboardProfileRepo interface {
	ListByUserIDs(ctx context.Context, userIDs []string) ([]models.Profile, error)
}

// DashboardService computes cross-lecturer aggregations. A candidate counts
// as "chosen" for a course only when the course's owning lecturer holds them
// in a selection row; applying alone is never enough. Aggregations are cached
// behind dash:* keys and invalidated by the selection mutators.
type DashboardService struct {
	users        dashboardUserRepo
	courses      dashboardCourseRepo
	applications dashboardApplicationRepo
	selections   dashboardSelectionRepo
	profiles     dashboardProfileRepo
	cache        *CacheService
	cacheTTL     time.Duration
	threshold    int
	logger       *zap.Logger
}

// NewDashboardService constructs a DashboardService. threshold is the default
// cutoff for CandidatesChosenAboveThreshold when the caller passes none.
func NewDashboardService(users dashboardUserRepo, courses dashboardCourseRepo, applications dashboardApplicationRepo, selections dashboardSelectionRepo, profiles dashboardProfileRepo, cache *CacheService, cacheTTL time.Duration, threshold int, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = 3
	}
	return &DashboardService{
		users:        users,
		courses:      courses,
		applications: applications,
		selections:   selections,
		profiles:     profiles,
		cache:        cache,
		cacheTTL:     cacheTTL,
		threshold:    threshold,
		logger:       logger,
	}
}

// DefaultThreshold exposes the configured chosen-course cutoff.
func (s *DashboardService) DefaultThreshold() int {
	return s.threshold
}

// CandidatesPerCourse lists, for every course, the candidates confirmed for
// it by the owning lecturer. The boolean reports whether the payload came
// from cache.
func (s *DashboardService) CandidatesPerCourse(ctx context.Context) ([]dto.CourseCandidates, bool, error) {
	var cached []dto.CourseCandidates
	if hit, _ := s.cache.Get(ctx, cacheKeyCandidatesPerCourse, &cached); hit {
		return cached, true, nil
	}

	courses, chosenByLecturer, err := s.selectionContext(ctx)
	if err != nil {
		return nil, false, err
	}
	applications, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	candidatesByID, err := s.candidatesByID(ctx)
	if err != nil {
		return nil, false, err
	}

	buckets := make(map[string][]dto.CandidateBrief, len(courses))
	seen := make(map[string]map[string]struct{}, len(courses))
	for _, application := range applications {
		candidate, ok := candidatesByID[application.UserID]
		if !ok {
			continue
		}
		for _, course := range courses {
			if course.LecturerID == nil || !contains(application.CourseIDs, course.ID) {
				continue
			}
			chosen := chosenByLecturer[*course.LecturerID]
			if _, picked := chosen[candidate.ID]; !picked {
				continue
			}
			if seen[course.ID] == nil {
				seen[course.ID] = make(map[string]struct{})
			}
			if _, dup := seen[course.ID][candidate.ID]; dup {
				continue
			}
			seen[course.ID][candidate.ID] = struct{}{}
			buckets[course.ID] = append(buckets[course.ID], dto.CandidateBrief{
				ID:        candidate.ID,
				FirstName: candidate.FirstName,
				LastName:  candidate.LastName,
			})
		}
	}

	result := make([]dto.CourseCandidates, 0, len(courses))
	for _, course := range courses {
		briefs := buckets[course.ID]
		if briefs == nil {
			briefs = []dto.CandidateBrief{}
		}
		result = append(result, dto.CourseCandidates{
			CourseID:   course.ID,
			Title:      course.Title,
			Candidates: briefs,
		})
	}

	s.store(ctx, cacheKeyCandidatesPerCourse, result)
	return result, false, nil
}

// CandidatesChosenAboveThreshold returns candidates chosen for strictly more
// than threshold distinct courses. A threshold <= 0 falls back to the
// configured default.
func (s *DashboardService) CandidatesChosenAboveThreshold(ctx context.Context, threshold int) ([]dto.Candidate, bool, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	key := fmt.Sprintf(cacheKeyChosenAboveFmt, threshold)
	var cached []dto.Candidate
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	candidates, counts, err := s.chosenCourseCounts(ctx)
	if err != nil {
		return nil, false, err
	}

	matched := make([]models.User, 0)
	for _, candidate := range candidates {
		if len(counts[candidate.ID]) > threshold {
			matched = append(matched, candidate)
		}
	}

	result, err := s.enrich(ctx, matched)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, key, result)
	return result, false, nil
}

// CandidatesChosenNone returns candidates no lecturer has confirmed for any
// of their applied courses.
func (s *DashboardService) CandidatesChosenNone(ctx context.Context) ([]dto.Candidate, bool, error) {
	var cached []dto.Candidate
	if hit, _ := s.cache.Get(ctx, cacheKeyChosenNone, &cached); hit {
		return cached, true, nil
	}

	candidates, counts, err := s.chosenCourseCounts(ctx)
	if err != nil {
		return nil, false, err
	}

	matched := make([]models.User, 0)
	for _, candidate := range candidates {
		if len(counts[candidate.ID]) == 0 {
			matched = append(matched, candidate)
		}
	}

	result, err := s.enrich(ctx, matched)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, cacheKeyChosenNone, result)
	return result, false, nil
}

// chosenCourseCounts returns every candidate in relation order plus, per
// candidate, the distinct courses they are confirmed for.
func (s *DashboardService) chosenCourseCounts(ctx context.Context) ([]models.User, map[string]map[string]struct{}, error) {
	courses, chosenByLecturer, err := s.selectionContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	applications, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	role := models.RoleCandidate
	candidates, err := s.users.List(ctx, models.UserFilter{Role: &role})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}
	candidateIDs := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidateIDs[candidate.ID] = struct{}{}
	}

	counts := make(map[string]map[string]struct{}, len(candidates))
	for _, application := range applications {
		if _, ok := candidateIDs[application.UserID]; !ok {
			continue
		}
		for _, course := range courses {
			if course.LecturerID == nil || !contains(application.CourseIDs, course.ID) {
				continue
			}
			chosen := chosenByLecturer[*course.LecturerID]
			if _, picked := chosen[application.UserID]; !picked {
				continue
			}
			if counts[application.UserID] == nil {
				counts[application.UserID] = make(map[string]struct{})
			}
			counts[application.UserID][course.ID] = struct{}{}
		}
	}
	return candidates, counts, nil
}

// selectionContext loads courses plus the per-lecturer union of chosen
// tutor ids.
func (s *DashboardService) selectionContext(ctx context.Context) ([]models.Course, map[string]map[string]struct{}, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	selections, err := s.selections.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor selections")
	}
	chosen := make(map[string]map[string]struct{}, len(selections))
	for _, selection := range selections {
		if chosen[selection.LecturerID] == nil {
			chosen[selection.LecturerID] = make(map[string]struct{})
		}
		for _, tutorID := range selection.TutorIDs {
			chosen[selection.LecturerID][tutorID] = struct{}{}
		}
	}
	return courses, chosen, nil
}

func (s *DashboardService) candidatesByID(ctx context.Context) (map[string]models.User, error) {
	role := models.RoleCandidate
	candidates, err := s.users.List(ctx, models.UserFilter{Role: &role})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}
	byID := make(map[string]models.User, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.ID] = candidate
	}
	return byID, nil
}

func (s *DashboardService) enrich(ctx context.Context, users []models.User) ([]dto.Candidate, error) {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}

	byUser := map[string]*models.Profile{}
	if len(ids) > 0 {
		profiles, err := s.profiles.ListByUserIDs(ctx, ids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profiles")
		}
		for i := range profiles {
			byUser[profiles[i].UserID] = &profiles[i]
		}
	}

	result := make([]dto.Candidate, 0, len(users))
	for _, user := range users {
		result = append(result, dto.Candidate{User: user, Profile: byUser[user.ID]})
	}
	return result, nil
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard payload", zap.String("key", key), zap.Error(err))
	}
}

func contains(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
