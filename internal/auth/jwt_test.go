package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func contextWithToken(t *testing.T, tokenStr, secret string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	c.Set("user", token)
	return c
}

func TestGenerateAndExtractTenant(t *testing.T) {
	secret := "test-secret"
	tenantID := "tenant-123"

	tokenStr, expiresAt, err := GenerateToken(tenantID, secret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.True(t, expiresAt.After(time.Now()))

	c := contextWithToken(t, tokenStr, secret)
	got, err := TenantIDFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestTenantFallsBackToSubject(t *testing.T) {
	secret := "test-secret"
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": "subject-tenant",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)

	c := contextWithToken(t, tokenStr, secret)
	got, err := TenantIDFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, "subject-tenant", got)
}

func TestTenantMissingUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_, err := TenantIDFromContext(c)
	assert.Error(t, err)
}

func TestGenerateTokenValidation(t *testing.T) {
	_, _, err := GenerateToken("", "secret", time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateToken("t1", "", time.Hour)
	assert.Error(t, err)

	_, _, err = GenerateToken("t1", "secret", 0)
	assert.Error(t, err)
}
