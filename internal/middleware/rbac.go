package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/response"
)

// RequireRoles rejects requests whose authenticated role is not in the
// allowed set. It must run after Authenticate.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		role, ok := roleFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, permitted := allowed[role]; !permitted {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOrRoles permits the request when the path parameter names the
// authenticated user, or when the role is in the allowed set.
func RequireSelfOrRoles(param string, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		userID, idOK := c.Get(ContextUserIDKey)
		role, roleOK := roleFrom(c)
		if !idOK || !roleOK {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if c.Param(param) == userID.(string) {
			c.Next()
			return
		}
		if _, permitted := allowed[role]; permitted {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

func roleFrom(c *gin.Context) (models.UserRole, bool) {
	value, ok := c.Get(ContextRoleKey)
	if !ok {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}
