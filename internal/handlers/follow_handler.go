package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow requests and follower lists
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers routes that need an authenticated caller
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follows/:user_id", h.FollowUser)
	g.DELETE("/follows/:user_id", h.UnfollowUser)
	g.GET("/follows/requests", h.PendingRequests)
	g.POST("/follows/requests/:user_id/accept", h.AcceptRequest)
	g.POST("/follows/requests/:user_id/reject", h.RejectRequest)
	g.DELETE("/followers/:user_id", h.RemoveFollower)
}

// RegisterPublicFollowRoutes registers follower lists
func (h *FollowHandler) RegisterPublicFollowRoutes(g *echo.Group) {
	g.GET("/users/:user_id/followers", h.Followers)
	g.GET("/users/:user_id/following", h.Following)
}

// FollowUser requests to follow a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}

	outcome, err := h.follows.Request(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	return respond(c, status, outcome)
}

// UnfollowUser removes a follow or cancels a pending request
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	if err := h.follows.Unfollow(c.Request().Context(), getUserIDFromContext(c), targetID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"following": false})
}

// PendingRequests lists follow requests waiting for the caller
func (h *FollowHandler) PendingRequests(c echo.Context) error {
	requests, err := h.follows.PendingRequests(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"requests": requests})
}

func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	followerID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	follow, err := h.follows.Accept(c.Request().Context(), getUserIDFromContext(c), followerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, follow)
}

func (h *FollowHandler) RejectRequest(c echo.Context) error {
	followerID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	if err := h.follows.Reject(c.Request().Context(), getUserIDFromContext(c), followerID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"rejected": true})
}

func (h *FollowHandler) RemoveFollower(c echo.Context) error {
	followerID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	if err := h.follows.RemoveFollower(c.Request().Context(), getUserIDFromContext(c), followerID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"removed": true})
}

func (h *FollowHandler) Followers(c echo.Context) error {
	userID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	users, err := h.follows.Followers(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"users": users})
}

func (h *FollowHandler) Following(c echo.Context) error {
	userID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	users, err := h.follows.Following(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"users": users})
}
