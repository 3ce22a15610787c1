package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
)

type fakeSelectionSrv struct {
	selection *models.TutorSelection
	added     []string
	removed   []string
	setCalls  [][]string
}

func (f *fakeSelectionSrv) AddTutor(_ context.Context, _, tutorID string) (*models.TutorSelection, error) {
	f.added = append(f.added, tutorID)
	return f.selection, nil
}

func (f *fakeSelectionSrv) RemoveTutor(_ context.Context, _, tutorID string) (*models.TutorSelection, error) {
	f.removed = append(f.removed, tutorID)
	return f.selection, nil
}

func (f *fakeSelectionSrv) SetCandidateApplications(_ context.Context, _ string, courseIDs []string) (*models.CourseApplication, error) {
	f.setCalls = append(f.setCalls, courseIDs)
	return &models.CourseApplication{UserID: "cand-1", CourseIDs: courseIDs}, nil
}

type fakeRosterSrv struct {
	rosters []dto.CourseRoster
	pool    []string
}

func (f *fakeRosterSrv) RosterPerCourse(context.Context) ([]dto.CourseRoster, error) {
	return f.rosters, nil
}

func (f *fakeRosterSrv) ChosenTutorPool(context.Context, string) ([]string, error) {
	return f.pool, nil
}

func (f *fakeRosterSrv) UniqueCandidatePool(context.Context, string) ([]dto.Candidate, error) {
	return nil, nil
}

func TestSelectionHandlerAddTutor(t *testing.T) {
	srv := &fakeSelectionSrv{selection: &models.TutorSelection{LecturerID: "lect-1", TutorIDs: []string{"tut-1"}}}
	handler := NewSelectionHandler(srv, &fakeRosterSrv{}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodPut, "/selections/tut-1", "")
	c.Params = gin.Params{{Key: "tutorId", Value: "tut-1"}}

	handler.AddTutor(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tut-1"}, srv.added)
}

func TestSelectionHandlerRemoveTutor(t *testing.T) {
	srv := &fakeSelectionSrv{selection: &models.TutorSelection{LecturerID: "lect-1", TutorIDs: []string{}}}
	handler := NewSelectionHandler(srv, &fakeRosterSrv{}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodDelete, "/selections/tut-1", "")
	c.Params = gin.Params{{Key: "tutorId", Value: "tut-1"}}

	handler.RemoveTutor(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tut-1"}, srv.removed)
}

func TestSelectionHandlerSetApplications(t *testing.T) {
	srv := &fakeSelectionSrv{}
	handler := NewSelectionHandler(srv, &fakeRosterSrv{}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodPut, "/applications", `{"course_ids":["course-a","course-b"]}`)

	handler.SetApplications(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.setCalls, 1)
	assert.Equal(t, []string{"course-a", "course-b"}, srv.setCalls[0])
}

func TestSelectionHandlerSetApplicationsBadPayload(t *testing.T) {
	handler := NewSelectionHandler(&fakeSelectionSrv{}, &fakeRosterSrv{}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodPut, "/applications", `{"course_ids":"nope"}`)

	handler.SetApplications(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectionHandlerRosters(t *testing.T) {
	handler := NewSelectionHandler(&fakeSelectionSrv{}, &fakeRosterSrv{rosters: []dto.CourseRoster{
		{CourseID: "course-a", Candidates: []string{"cand-1"}},
		{CourseID: "course-b", Candidates: []string{}},
	}}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/applications/rosters", "")

	handler.Rosters(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var rosters []dto.CourseRoster
	require.NoError(t, json.Unmarshal(envelope.Data, &rosters))
	require.Len(t, rosters, 2)
	assert.Equal(t, []string{}, rosters[1].Candidates)
}

func TestSelectionHandlerChosenTutors(t *testing.T) {
	handler := NewSelectionHandler(&fakeSelectionSrv{}, &fakeRosterSrv{pool: []string{"tut-1", "tut-2"}}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/selections", "")

	handler.ChosenTutors(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var pool []string
	require.NoError(t, json.Unmarshal(envelope.Data, &pool))
	assert.Equal(t, []string{"tut-1", "tut-2"}, pool)
}
