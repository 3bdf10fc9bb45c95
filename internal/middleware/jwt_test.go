package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-session/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRequest(token string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "42",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, c := authRequest(token)

	var gotUser, gotRole interface{}
	h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
		gotUser = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", gotUser)
	assert.Equal(t, "customer", gotRole)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := middleware.JWTAuth(testSecret)

	// No header at all.
	rec, c := authRequest("")
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong secret.
	rec, c = authRequest(signToken(t, "other-secret", jwt.MapClaims{"sub": "42"}))
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Expired.
	rec, c = authRequest(signToken(t, testSecret, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage.
	rec, c = authRequest("not.a.token")
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
