package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"medunit-portal/internal/config"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/utils"
)

const (
	userIDKey    = "userID"
	userRoleKey  = "userRole"
	userEmailKey = "userEmail"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.Unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.Unauthorized(c, "Authentication required")
			return
		}
		if !role.In(allowedRoles...) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's ID.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// GetUserRoleFromContext returns the authenticated user's role.
func GetUserRoleFromContext(c *gin.Context) (domain.Role, bool) {
	v, exists := c.Get(userRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(domain.Role)
	return role, ok
}
