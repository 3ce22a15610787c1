package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tutorhub/selection-api/internal/models"
)

func performWith(t *testing.T, handler gin.HandlerFunc, userID string, role models.UserRole, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()

	router := gin.New()
	router.GET("/users/:id", func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextUserIDKey, userID)
			c.Set(ContextRoleKey, role)
		}
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	rec := performWith(t, RequireRoles(models.RoleAdmin, models.RoleLecturer), "u1", models.RoleLecturer, "/users/u2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	rec := performWith(t, RequireRoles(models.RoleAdmin), "u1", models.RoleCandidate, "/users/u2")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsUnauthenticated(t *testing.T) {
	rec := performWith(t, RequireRoles(models.RoleAdmin), "", "", "/users/u2")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSelfOrRolesAllowsSelf(t *testing.T) {
	rec := performWith(t, RequireSelfOrRoles("id", models.RoleAdmin), "u1", models.RoleCandidate, "/users/u1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSelfOrRolesAllowsPrivilegedRole(t *testing.T) {
	rec := performWith(t, RequireSelfOrRoles("id", models.RoleAdmin), "u1", models.RoleAdmin, "/users/u2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSelfOrRolesRejectsOthers(t *testing.T) {
	rec := performWith(t, RequireSelfOrRoles("id", models.RoleAdmin), "u1", models.RoleCandidate, "/users/u2")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
