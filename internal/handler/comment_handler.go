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

type commentService interface {
	Save(ctx context.Context, lecturerID, tutorID, text string) (*models.Comment, error)
	GetByPair(ctx context.Context, lecturerID, tutorID string) (*models.Comment, error)
}

// CommentHandler exposes lecturer comment endpoints.
type CommentHandler struct {
	comments commentService
	logger   *zap.Logger
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(comments commentService, logger *zap.Logger) *CommentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentHandler{comments: comments, logger: logger}
}

// Save writes the authenticated lecturer's comment about a tutor.
func (h *CommentHandler) Save(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SaveCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload"))
		return
	}

	comment, err := h.comments.Save(c.Request.Context(), lecturerID, c.Param("tutorId"), req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment)
}

// Get returns the authenticated lecturer's comment about a tutor.
func (h *CommentHandler) Get(c *gin.Context) {
	lecturerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comment, err := h.comments.GetByPair(c.Request.Context(), lecturerID, c.Param("tutorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment)
}
