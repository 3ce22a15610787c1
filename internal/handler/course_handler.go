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

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error)
	AssignLecturer(ctx context.Context, courseID, lecturerID string) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

// CourseHandler exposes the course catalogue endpoints.
type CourseHandler struct {
	courses courseService
	logger  *zap.Logger
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses courseService, logger *zap.Logger) *CourseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseHandler{courses: courses, logger: logger}
}

// List returns every course.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get returns a single course.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create adds a course.
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload"))
		return
	}

	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update applies partial changes to a course.
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload"))
		return
	}

	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// AssignLecturer binds a lecturer to a course.
func (h *CourseHandler) AssignLecturer(c *gin.Context) {
	var req dto.AssignLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload"))
		return
	}

	course, err := h.courses.AssignLecturer(c.Request.Context(), c.Param("id"), req.LecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete removes a course.
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
