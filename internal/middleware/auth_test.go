package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medunit-portal/internal/config"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/models"
	"medunit-portal/internal/utils"
)

var testCfg = &config.Config{JWTSecret: "test-secret", JWTExpirationMinutes: 5}

func tokenFor(t *testing.T, role domain.Role) string {
	t.Helper()
	u := &models.User{Email: "kip@campus.edu", Role: role}
	u.ID = "u-1"
	tok, err := utils.GenerateToken(u, testCfg)
	require.NoError(t, err)
	return tok
}

func newRouter(roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(testCfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.String(http.StatusOK, id+":"+string(role))
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	rec := serve(newRouter(), "Bearer "+tokenFor(t, domain.RoleDoctor))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1:doctor", rec.Body.String())
}

func TestAuth_Rejects(t *testing.T) {
	other := &config.Config{JWTSecret: "other", JWTExpirationMinutes: 5}
	u := &models.User{Role: domain.RolePatient}
	u.ID = "u-2"
	foreign, err := utils.GenerateToken(u, other)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"no scheme":    tokenFor(t, domain.RolePatient),
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not.a.token",
		"wrong secret": "Bearer " + foreign,
		"three fields": "Bearer a b",
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(newRouter(), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRoleAuth(t *testing.T) {
	r := newRouter(domain.RoleDoctor, domain.RoleAdmin)

	assert.Equal(t, http.StatusOK, serve(r, "Bearer "+tokenFor(t, domain.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer "+tokenFor(t, domain.RolePatient)).Code)
}

func TestRoleAuth_WithoutAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RoleAuthMiddleware(domain.RoleAdmin), func(c *gin.Context) {
		t.Fatal("should not reach handler")
	})
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}
