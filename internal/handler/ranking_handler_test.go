package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/middleware"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeRankingSrv struct {
	ranking       []dto.RankedTutor
	commitErr     error
	committed     [][]string
	exportPayload []byte
	exportType    string
	exportErr     error
}

func (f *fakeRankingSrv) EffectiveOrder(context.Context, string) ([]dto.RankedTutor, error) {
	return f.ranking, nil
}

func (f *fakeRankingSrv) CommitOrder(_ context.Context, _ string, tutorIDs []string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = append(f.committed, tutorIDs)
	return nil
}

func (f *fakeRankingSrv) ExportRanking(context.Context, string, string) ([]byte, string, error) {
	return f.exportPayload, f.exportType, f.exportErr
}

func authedContext(t *testing.T, rec *httptest.ResponseRecorder, method, target, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserIDKey, "lect-1")
	return c
}

func TestRankingHandlerGet(t *testing.T) {
	handler := NewRankingHandler(&fakeRankingSrv{ranking: []dto.RankedTutor{
		{Position: 1, ID: "tut-1"},
	}}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/ranking", "")

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var ranking []dto.RankedTutor
	require.NoError(t, json.Unmarshal(envelope.Data, &ranking))
	require.Len(t, ranking, 1)
	assert.Equal(t, "tut-1", ranking[0].ID)
}

func TestRankingHandlerGetUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&fakeRankingSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ranking", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRankingHandlerCommit(t *testing.T) {
	srv := &fakeRankingSrv{}
	handler := NewRankingHandler(srv, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodPut, "/ranking", `{"tutor_ids":["tut-2","tut-1"]}`)

	handler.Commit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.committed, 1)
	assert.Equal(t, []string{"tut-2", "tut-1"}, srv.committed[0])
}

func TestRankingHandlerCommitInvalidPermutation(t *testing.T) {
	handler := NewRankingHandler(&fakeRankingSrv{commitErr: appErrors.ErrInvalidPermutation}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodPut, "/ranking", `{"tutor_ids":["tut-9"]}`)

	handler.Commit(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_PERMUTATION", envelope.Error.Code)
}

func TestRankingHandlerExport(t *testing.T) {
	handler := NewRankingHandler(&fakeRankingSrv{
		exportPayload: []byte("Position,First Name\n"),
		exportType:    "text/csv",
	}, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/ranking/export?format=csv", "")

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}
