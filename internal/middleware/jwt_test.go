package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"conexx/internal/common"
	"conexx/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func runProtected(token string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, captured
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":       userID.String(),
		"role":      models.RoleClientAdmin,
		"tenant_id": tenantID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	rec, captured := runProtected("Bearer "+token, JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)

	gotUser, ok := common.GetUserIDFromContext(captured.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, userID, gotUser)

	gotTenant, ok := common.GetTenantIDFromContext(captured.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, tenantID, gotTenant)

	role, ok := common.GetRoleFromContext(captured.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, models.RoleClientAdmin, role)
}

func TestJWTMiddlewarePlatformAdminWithoutTenant(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": models.RolePlatformAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, captured := runProtected("Bearer "+token, JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, ok := common.GetTenantIDFromContext(captured.Request().Context())
	assert.False(t, ok)
}

func TestJWTMiddlewareMissingToken(t *testing.T) {
	rec, _ := runProtected("", JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	rec, _ := runProtected("Token abc", JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": models.RoleManager,
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	rec, _ := runProtected("Bearer "+token, JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareWrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": models.RoleManager,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("some-other-secret"))
	assert.NoError(t, err)

	rec, _ := runProtected("Bearer "+signed, JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareMissingRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := runProtected("Bearer "+token, JWTMiddleware(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAllows(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": models.RolePlatformAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := runProtected("Bearer "+token, JWTMiddleware(testSecret), RequireRole(models.RolePlatformAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbids(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": models.RoleManager,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := runProtected("Bearer "+token, JWTMiddleware(testSecret), RequireRole(models.RolePlatformAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
