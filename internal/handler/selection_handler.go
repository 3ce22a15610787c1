package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/response"
)

type selectionMutator interface {
	AddTutor(ctx context.Context, lecturerID, tutorID string) (*models.TutorSelection, error)
	RemoveTutor(ctx context.Context, lecturerID, tutorID string) (*models.TutorSelection, error)
	SetCandidateApplications(ctx context.Context, candidateID string, courseIDs []string) (*models.CourseApplication, error)
}

type rosterReader interface {
	RosterPerCourse(ctx context.Context) ([]dto.CourseRoster, error)
	ChosenTutorPool(ctx context.Context, lecturerID string) ([]string, error)
	UniqueCandidatePool(ctx context.Context, lecturerID string) ([]dto.Candidate, error)
}

// SelectionHandler exposes the selection and application mutators plus the
// lecturer-facing read views.
type SelectionHandler struct {
	selections selectionMutator
	roster     rosterReader
	logger     *zap.Logger
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(selections selectionMutator, roster rosterReader, logger *zap.Logger) *SelectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionHandler{selections: selections, roster: roster, logger: logger}
}

// AddTutor appends a tutor to the authenticated lecturer's selection.
func (h *SelectionHandler) AddTutor(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	selection, err := h.selections.AddTutor(c.Request.Context(), lecturerID, c.Param("tutorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection)
}

// RemoveTutor drops a tutor from the authenticated lecturer's selection.
func (h *SelectionHandler) RemoveTutor(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	selection, err := h.selections.RemoveTutor(c.Request.Context(), lecturerID, c.Param("tutorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection)
}

// ChosenTutors returns the authenticated lecturer's selection pool.
func (h *SelectionHandler) ChosenTutors(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pool, err := h.roster.ChosenTutorPool(c.Request.Context(), lecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool)
}

// CandidatePool returns the deduplicated candidates who applied to the
// authenticated lecturer's courses.
func (h *SelectionHandler) CandidatePool(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pool, err := h.roster.UniqueCandidatePool(c.Request.Context(), lecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool)
}

// SetApplications replaces the authenticated candidate's applied-course set.
func (h *SelectionHandler) SetApplications(c *gin.Context) {
	candidateID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SetApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload"))
		return
	}

	application, err := h.selections.SetCandidateApplications(c.Request.Context(), candidateID, req.CourseIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application)
}

// Rosters returns every course with the candidates who applied to it.
func (h *SelectionHandler) Rosters(c *gin.Context) {
	rosters, err := h.roster.RosterPerCourse(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosters)
}
