package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles group membership and moderation requests
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// RegisterPublicGroupRoutes registers group routes readable without a token
func (h *GroupHandler) RegisterPublicGroupRoutes(g *echo.Group) {
	g.GET("/groups/:id", h.ViewGroup)
}

// RegisterGroupRoutes registers group routes that need an authenticated caller
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.ListGroups)
	g.GET("/groups/explore", h.ExploreGroups)
	g.POST("/groups/:id/join", h.JoinGroup)
	g.POST("/groups/:id/leave", h.LeaveGroup)
	g.GET("/groups/:id/requests", h.PendingRequests)
	g.POST("/groups/:id/requests/:user_id/approve", h.ApproveRequest)
	g.POST("/groups/:id/requests/:user_id/reject", h.RejectRequest)
	g.POST("/groups/:id/members/:user_id/moderator", h.MakeModerator)
	g.DELETE("/groups/:id/members/:user_id", h.RemoveMember)
	g.DELETE("/groups/:id", h.DeleteGroup)
}

func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	group, err := h.groups.Create(c.Request().Context(), getActor(c), services.GroupInputFromRequest(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, group)
}

// ListGroups lists the groups the caller owns or belongs to; admins get all of them
func (h *GroupHandler) ListGroups(c echo.Context) error {
	groups, err := h.groups.ListFor(c.Request().Context(), getActor(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"groups": groups})
}

func (h *GroupHandler) ExploreGroups(c echo.Context) error {
	groups, err := h.groups.Explore(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"groups": groups})
}

func (h *GroupHandler) ViewGroup(c echo.Context) error {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return err
	}
	view, err := h.groups.View(c.Request().Context(), getActor(c), groupID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, view)
}

func (h *GroupHandler) JoinGroup(c echo.Context) error {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return err
	}
	outcome, err := h.groups.Join(c.Request().Context(), getActor(c), groupID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	return respond(c, status, outcome)
}

func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return err
	}
	outcome, err := h.groups.Leave(c.Request().Context(), getActor(c), groupID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, outcome)
}

func (h *GroupHandler) PendingRequests(c echo.Context) error {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return err
	}
	requests, err := h.groups.PendingRequests(c.Request().Context(), getActor(c), groupID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"requests": requests})
}

func (h *GroupHandler) ApproveRequest(c echo.Context) error {
	groupID, userID, err := groupAndUser(c)
	if err != nil {
		return err
	}
	membership, err := h.groups.Approve(c.Request().Context(), getActor(c), groupID, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, membership)
}

func (h *GroupHandler) RejectRequest(c echo.Context) error {
	groupID, userID, err := groupAndUser(c)
	if err != nil {
		return err
	}
	if err := h.groups.RejectRequest(c.Request().Context(), getActor(c), groupID, userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"rejected": true})
}

func (h *GroupHandler) MakeModerator(c echo.Context) error {
	groupID, userID, err := groupAndUser(c)
	if err != nil {
		return err
	}
	if err := h.groups.MakeModerator(c.Request().Context(), getActor(c), groupID, userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"is_moderator": true})
}

func (h *GroupHandler) RemoveMember(c echo.Context) error {
	groupID, userID, err := groupAndUser(c)
	if err != nil {
		return err
	}
	if err := h.groups.RemoveMember(c.Request().Context(), getActor(c), groupID, userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"removed": true})
}

func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Request().Context(), getActor(c), groupID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func groupAndUser(c echo.Context) (uint, uint, error) {
	groupID, err := paramID(c, "id", "group ID")
	if err != nil {
		return 0, 0, err
	}
	userID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return 0, 0, err
	}
	return groupID, userID, nil
}
