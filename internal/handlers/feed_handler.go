package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	content *services.ContentService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(content *services.ContentService) *FeedHandler {
	return &FeedHandler{content: content}
}

// RegisterFeedRoutes registers feed routes; the caller's token is optional
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the newest posts the caller may read
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, limit := pagination(c)

	posts, err := h.content.Feed(c.Request().Context(), getActor(c), (page-1)*limit, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    posts,
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasNextPage":  len(posts) == limit,
		},
	})
}
