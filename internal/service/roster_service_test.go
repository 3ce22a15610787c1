package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/models"
)

type fakeUserLister struct {
	users []models.User
	err   error
}

func (f *fakeUserLister) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if filter.Role == nil {
		return f.users, nil
	}
	var filtered []models.User
	for _, user := range f.users {
		if user.Role == *filter.Role {
			filtered = append(filtered, user)
		}
	}
	return filtered, nil
}

type fakeCourseLister struct {
	courses []models.Course
	err     error
}

func (f *fakeCourseLister) ListAll(context.Context) ([]models.Course, error) {
	return f.courses, f.err
}

type fakeApplicationLister struct {
	applications []models.CourseApplication
	err          error
}

func (f *fakeApplicationLister) ListAll(context.Context) ([]models.CourseApplication, error) {
	return f.applications, f.err
}

type fakeSelectionLister struct {
	selections []models.TutorSelection
	err        error
}

func (f *fakeSelectionLister) ListAll(context.Context) ([]models.TutorSelection, error) {
	return f.selections, f.err
}

func (f *fakeSelectionLister) ListByLecturer(_ context.Context, lecturerID string) ([]models.TutorSelection, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []models.TutorSelection
	for _, selection := range f.selections {
		if selection.LecturerID == lecturerID {
			matched = append(matched, selection)
		}
	}
	return matched, nil
}

type fakeProfileLister struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfileLister) ListByUserIDs(_ context.Context, userIDs []string) ([]models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var matched []models.Profile
	for _, profile := range f.profiles {
		if _, ok := want[profile.UserID]; ok {
			matched = append(matched, profile)
		}
	}
	return matched, nil
}

func candidate(id string) models.User {
	return models.User{ID: id, Role: models.RoleCandidate, FirstName: "C", LastName: id}
}

func lecturerCourse(id, lecturerID string) models.Course {
	return models.Course{ID: id, Code: "COMP" + id, Title: "Course " + id, LecturerID: &lecturerID}
}

func TestRosterPerCourseKeepsEmptyCourses(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{users: []models.User{candidate("cand-1"), candidate("cand-2")}},
		&fakeCourseLister{courses: []models.Course{
			{ID: "course-a", Code: "COMP1", Title: "A"},
			{ID: "course-b", Code: "COMP2", Title: "B"},
		}},
		&fakeApplicationLister{applications: []models.CourseApplication{
			{UserID: "cand-1", CourseIDs: []string{"course-a"}},
			{UserID: "cand-2", CourseIDs: []string{"course-a", "unknown-course"}},
		}},
		&fakeSelectionLister{},
		&fakeProfileLister{},
		zap.NewNop(),
	)

	rosters, err := svc.RosterPerCourse(context.Background())
	require.NoError(t, err)
	require.Len(t, rosters, 2)

	assert.Equal(t, []string{"cand-1", "cand-2"}, rosters[0].Candidates)
	assert.Equal(t, []string{}, rosters[1].Candidates)
}

func TestRosterPerCourseSkipsNonCandidates(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{users: []models.User{
			candidate("cand-1"),
			{ID: "lect-1", Role: models.RoleLecturer},
		}},
		&fakeCourseLister{courses: []models.Course{{ID: "course-a"}}},
		&fakeApplicationLister{applications: []models.CourseApplication{
			{UserID: "cand-1", CourseIDs: []string{"course-a"}},
			{UserID: "lect-1", CourseIDs: []string{"course-a"}},
			{UserID: "cand-1", CourseIDs: []string{"course-a"}},
		}},
		&fakeSelectionLister{},
		&fakeProfileLister{},
		zap.NewNop(),
	)

	rosters, err := svc.RosterPerCourse(context.Background())
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	assert.Equal(t, []string{"cand-1"}, rosters[0].Candidates)
}

func TestChosenTutorPoolUnionsRowsInOrder(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{},
		&fakeCourseLister{},
		&fakeApplicationLister{},
		&fakeSelectionLister{selections: []models.TutorSelection{
			{LecturerID: "lect-1", TutorIDs: []string{"tut-1", "tut-2"}},
			{LecturerID: "lect-1", TutorIDs: []string{"tut-2", "tut-3"}},
		}},
		&fakeProfileLister{},
		zap.NewNop(),
	)

	pool, err := svc.ChosenTutorPool(context.Background(), "lect-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tut-1", "tut-2", "tut-3"}, pool)
}

func TestChosenTutorPoolEmptyWhenNoRows(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{},
		&fakeCourseLister{},
		&fakeApplicationLister{},
		&fakeSelectionLister{},
		&fakeProfileLister{},
		zap.NewNop(),
	)

	pool, err := svc.ChosenTutorPool(context.Background(), "lect-unknown")
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestUniqueCandidatePoolDeduplicatesAcrossCourses(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{users: []models.User{candidate("cand-1"), candidate("cand-2")}},
		&fakeCourseLister{courses: []models.Course{
			lecturerCourse("course-a", "lect-1"),
			lecturerCourse("course-b", "lect-1"),
			lecturerCourse("course-c", "lect-2"),
		}},
		&fakeApplicationLister{applications: []models.CourseApplication{
			{UserID: "cand-1", CourseIDs: []string{"course-a", "course-b"}},
			{UserID: "cand-2", CourseIDs: []string{"course-c"}},
		}},
		&fakeSelectionLister{},
		&fakeProfileLister{profiles: []models.Profile{
			{UserID: "cand-1", About: "hi", TimesSelected: 2},
		}},
		zap.NewNop(),
	)

	pool, err := svc.UniqueCandidatePool(context.Background(), "lect-1")
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "cand-1", pool[0].User.ID)
	require.NotNil(t, pool[0].Profile)
	assert.Equal(t, 2, pool[0].Profile.TimesSelected)
}

func TestUniqueCandidatePoolEmptyForLecturerWithoutCourses(t *testing.T) {
	svc := NewRosterService(
		&fakeUserLister{users: []models.User{candidate("cand-1")}},
		&fakeCourseLister{courses: []models.Course{lecturerCourse("course-a", "lect-1")}},
		&fakeApplicationLister{applications: []models.CourseApplication{
			{UserID: "cand-1", CourseIDs: []string{"course-a"}},
		}},
		&fakeSelectionLister{},
		&fakeProfileLister{},
		zap.NewNop(),
	)

	pool, err := svc.UniqueCandidatePool(context.Background(), "lect-2")
	require.NoError(t, err)
	assert.Empty(t, pool)
}
