package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/selection-api/internal/models"
	appErrors "github.com/tutorhub/selection-api/pkg/errors"
	"github.com/tutorhub/selection-api/pkg/response"
)

// Context keys set by the authentication middleware.
const (
	ContextUserIDKey = "auth_user_id"
	ContextRoleKey   = "auth_user_role"
	ContextUserKey   = "auth_user"
)

type tokenValidator interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
	CurrentUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// Authenticate verifies the bearer token and loads the live user so a block
// applied after token issuance still locks the account out.
func Authenticate(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextRoleKey, user.Role)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}
