package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tutorhub/selection-api/internal/dto"
	"github.com/tutorhub/selection-api/internal/service"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/response"
)

type rankingService interface {
	EffectiveOrder(ctx context.Context, lecturerID string) ([]dto.RankedTutor, error)
	CommitOrder(ctx context.Context, lecturerID string, tutorIDs []string) error
	ExportRanking(ctx context.Context, lecturerID, format string) ([]byte, string, error)
}

// RankingHandler exposes the lecturer's tutor ordering endpoints.
type RankingHandler struct {
	ranking rankingService
	logger  *zap.Logger
}

// NewRankingHandler constructs a RankingHandler.
func NewRankingHandler(ranking rankingService, logger *zap.Logger) *RankingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingHandler{ranking: ranking, logger: logger}
}

// Get returns the authenticated lecturer's effective order.
func (h *RankingHandler) Get(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ranking, err := h.ranking.EffectiveOrder(c.Request.Context(), lecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking)
}

// Commit persists a new ordering for the authenticated lecturer.
func (h *RankingHandler) Commit(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CommitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload"))
		return
	}

	if err := h.ranking.CommitOrder(c.Request.Context(), lecturerID, req.TutorIDs); err != nil {
		response.Error(c, err)
		return
	}

	ranking, err := h.ranking.EffectiveOrder(c.Request.Context(), lecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking)
}

// Export streams the effective order as a CSV or PDF attachment.
func (h *RankingHandler) Export(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", service.ExportFormatCSV)
	payload, contentType, err := h.ranking.ExportRanking(c.Request.Context(), lecturerID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("tutor-ranking-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
