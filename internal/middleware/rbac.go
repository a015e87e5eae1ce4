package middleware

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/labstack/echo/v4"
)

// RequireAnyRole must run after JWTAuthMiddleware.
func RequireAnyRole(roles ...authz.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			if !actor.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
			}
			for _, role := range roles {
				if actor.HasRole(role) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions for this operation")
		}
	}
}
