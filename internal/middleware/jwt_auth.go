package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	claimsKey = "user"
	actorKey  = "actor"
)

var errMissingHeader = errors.New("missing authorization header")

// JWTAuthMiddleware rejects requests without a valid bearer token.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseBearer(c, secret)
			if err != nil {
				if errors.Is(err, errMissingHeader) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth identifies the caller when a token is present and treats
// the request as anonymous otherwise. A malformed token is still rejected.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseBearer(c, secret)
			switch {
			case errors.Is(err, errMissingHeader):
				c.Set(actorKey, authz.Anonymous)
			case err != nil:
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			default:
				setIdentity(c, claims)
			}
			return next(c)
		}
	}
}

// ActorFrom returns the caller identified by the auth middleware.
func ActorFrom(c echo.Context) authz.Actor {
	if actor, ok := c.Get(actorKey).(authz.Actor); ok {
		return actor
	}
	return authz.Anonymous
}

func setIdentity(c echo.Context, claims *models.JwtCustomClaims) {
	c.Set(claimsKey, claims)
	c.Set(actorKey, authz.NewActor(claims.UserID, claims.Roles...))
}

func parseBearer(c echo.Context, secret string) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
