package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uint, roles ...string) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newServer(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/who", func(c echo.Context) error {
		actor := ActorFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"id": actor.ID, "admin": actor.IsAdmin()})
	}, mw...)
	return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	e := newServer(JWTAuthMiddleware(testSecret))

	rec := do(e, signToken(t, 4, "Admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":4,"admin":true}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "garbage").Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	e := newServer(OptionalJWTAuth(testSecret))

	rec := do(e, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":0,"admin":false}`, rec.Body.String())

	rec = do(e, signToken(t, 9, "User"))
	assert.JSONEq(t, `{"id":9,"admin":false}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "garbage").Code)
}

func TestRequireAnyRole(t *testing.T) {
	e := newServer(JWTAuthMiddleware(testSecret), RequireAnyRole(authz.RoleAdmin))

	assert.Equal(t, http.StatusOK, do(e, signToken(t, 1, "Admin")).Code)
	assert.Equal(t, http.StatusForbidden, do(e, signToken(t, 2, "User")).Code)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apperrors.NotFound("post not found"), http.StatusNotFound, apperrors.CodeNotFound, "post not found"},
		{"forbidden", apperrors.Forbidden("private"), http.StatusForbidden, apperrors.CodeForbidden, "private"},
		{"upstream keeps its message", apperrors.Upstream("try again", errors.New("timeout")), http.StatusServiceUnavailable, apperrors.CodeUpstreamUnavailable, "try again"},
		{"internal hides details", apperrors.Internal("storage failure", errors.New("pq: secret")), http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID"), http.StatusBadRequest, "BAD_REQUEST", "Invalid user ID"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.Len(t, body.TraceID, 8)
		})
	}
}
