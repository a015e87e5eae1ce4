package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles and user search
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterPublicUserRoutes registers routes readable without a token
func (h *UserHandler) RegisterPublicUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:username", h.GetProfile)
}

// RegisterProfileRoutes registers routes for the caller's own profile
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.PUT("/users/me", h.UpdateProfile)
}

// GetProfile returns a profile as the caller is allowed to see it
func (h *UserHandler) GetProfile(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid username")
	}

	view, err := h.profiles.Show(c.Request().Context(), getActor(c), username)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, view)
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.profiles.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"users": users})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), getActor(c), services.UpdateProfileInput{
		DisplayName:     req.DisplayName,
		Bio:             req.Bio,
		IsPrivate:       req.IsPrivate,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}
