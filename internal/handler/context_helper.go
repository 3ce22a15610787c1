package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/selection-api/internal/middleware"
	"github.com/tutorhub/selection-api/internal/models"
)

// currentUserID returns the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	value, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

func currentRole(c *gin.Context) (models.UserRole, bool) {
	value, ok := c.Get(middleware.ContextRoleKey)
	if !ok {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}
