package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/response"
)

type dashboardService interface {
	CandidatesPerCourse(ctx context.Context) ([]dto.CourseCandidates, bool, error)
	CandidatesChosenAboveThreshold(ctx context.Context, threshold int) ([]dto.Candidate, bool, error)
	CandidatesChosenNone(ctx context.Context) ([]dto.Candidate, bool, error)
	DefaultThreshold() int
}

// DashboardHandler exposes the cross-lecturer aggregation endpoints.
type DashboardHandler struct {
	dashboards dashboardService
	logger     *zap.Logger
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboards dashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboards: dashboards, logger: logger}
}

// CandidatesPerCourse lists confirmed candidates per course.
func (h *DashboardHandler) CandidatesPerCourse(c *gin.Context) {
	result, cached, err := h.dashboards.CandidatesPerCourse(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, meta(cached))
}

// ChosenAboveThreshold lists candidates chosen for more than N courses. The
// threshold query parameter overrides the configured default.
func (h *DashboardHandler) ChosenAboveThreshold(c *gin.Context) {
	threshold := h.dashboards.DefaultThreshold()
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "threshold must be a positive integer"))
			return
		}
		threshold = parsed
	}

	result, cached, err := h.dashboards.CandidatesChosenAboveThreshold(c.Request.Context(), threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, meta(cached))
}

// ChosenNone lists candidates no lecturer has confirmed.
func (h *DashboardHandler) ChosenNone(c *gin.Context) {
	result, cached, err := h.dashboards.CandidatesChosenNone(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, meta(cached))
}

func meta(cached bool) map[string]interface{} {
	return map[string]interface{}{"cached": cached}
}
