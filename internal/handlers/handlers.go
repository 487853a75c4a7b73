// Package handlers implements the portal API endpoints on gin.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medunit-portal/internal/domain"
	"medunit-portal/internal/middleware"
	"medunit-portal/internal/utils"
)

// Clock returns the current time. Handlers take one so tests can pin "today".
type Clock func() time.Time

// internalError records err for the request logger and answers with a
// message that does not leak internals.
func internalError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	utils.InternalServerError(c, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// caller returns the authenticated user's ID and role, answering 401 when
// the auth middleware did not run.
func caller(c *gin.Context) (string, domain.Role, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return "", "", false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return "", "", false
	}
	return id, role, true
}

// domainError maps the domain error taxonomy onto response codes.
func domainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		utils.BadRequest(c, domain.Message(err))
	case domain.IsInvalidTransition(err):
		utils.UnprocessableEntity(c, err.Error())
	case domain.IsAuth(err):
		utils.Forbidden(c, domain.Message(err))
	default:
		internalError(c, "Request failed", err)
	}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
