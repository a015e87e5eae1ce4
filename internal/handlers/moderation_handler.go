package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

const moderationLogLimit = 100

// ModerationHandler exposes recorded content analysis verdicts to admins
type ModerationHandler struct {
	logs repositories.ModerationLogRepository
}

// NewModerationHandler accepts a nil repository when MongoDB is not configured.
func NewModerationHandler(logs repositories.ModerationLogRepository) *ModerationHandler {
	return &ModerationHandler{logs: logs}
}

func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("/moderation/logs", h.GetLogs, m...)
}

// GetLogs lists recent verdicts, optionally for one user via ?user_id=
func (h *ModerationHandler) GetLogs(c echo.Context) error {
	if h.logs == nil {
		return apperrors.Upstream("moderation log is not configured", nil)
	}

	ctx := c.Request().Context()
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
		}
		records, err := h.logs.ListByUser(ctx, uint(userID), moderationLogLimit)
		if err != nil {
			return apperrors.Upstream("failed to read moderation log", err)
		}
		return respond(c, http.StatusOK, echo.Map{"records": records})
	}

	records, err := h.logs.ListRecent(ctx, moderationLogLimit)
	if err != nil {
		return apperrors.Upstream("failed to read moderation log", err)
	}
	return respond(c, http.StatusOK, echo.Map{"records": records})
}
