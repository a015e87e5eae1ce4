package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.DELETE("/notifications/:id", h.ConsumeNotification)
	g.POST("/notifications/:id/accept", h.AcceptNotification)
}

// GetNotifications returns the caller's notifications, newest first, with pagination
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, limit := pagination(c)

	notifications, total, err := h.notifications.Page(c.Request().Context(), getUserIDFromContext(c), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    notifications,
		"meta":    pageMeta(page, limit, total),
	})
}

// GetGroupedNotifications buckets notifications into today, yesterday, this week and older
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	grouped, err := h.notifications.Grouped(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, grouped)
}

// ConsumeNotification dismisses a notification owned by the caller
func (h *NotificationHandler) ConsumeNotification(c echo.Context) error {
	id, err := paramID(c, "id", "notification ID")
	if err != nil {
		return err
	}
	if err := h.notifications.Consume(c.Request().Context(), getActor(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AcceptNotification accepts the follow or join request behind a notification
func (h *NotificationHandler) AcceptNotification(c echo.Context) error {
	id, err := paramID(c, "id", "notification ID")
	if err != nil {
		return err
	}
	outcome, err := h.notifications.Accept(c.Request().Context(), getActor(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, outcome)
}
