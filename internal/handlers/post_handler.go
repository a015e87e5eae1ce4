package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts, comments and reactions
type PostHandler struct {
	content *services.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *services.ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPublicPostRoutes registers post routes readable without a token
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts/:id/comments", h.GetComments)
	g.GET("/posts/:id/reactions", h.GetReactions)
	g.GET("/users/:user_id/posts", h.GetUserPosts)
}

// RegisterPostRoutes registers post routes that need an authenticated caller
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/posts/:id/reactions", h.ToggleReaction)
}

// CreatePost creates a new post on the caller's profile or in a group
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.CreatePost(c.Request().Context(), getActor(c), services.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		GroupID: req.GroupID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), getActor(c), postID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// GetUserPosts lists a user's profile posts with pagination
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := paramID(c, "user_id", "user ID")
	if err != nil {
		return err
	}
	page, limit := pagination(c)

	posts, err := h.content.UserPosts(c.Request().Context(), getActor(c), userID, (page-1)*limit, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"posts": posts, "page": page, "limit": limit})
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.UpdatePost(c.Request().Context(), getActor(c), postID, services.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// DeletePost deletes a post together with its comments and reactions
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	if err := h.content.DeletePost(c.Request().Context(), getActor(c), postID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) CreateComment(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.CreateComment(c.Request().Context(), getActor(c), postID, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment)
}

func (h *PostHandler) GetComments(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	comments, err := h.content.Comments(c.Request().Context(), getActor(c), postID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"comments": comments})
}

func (h *PostHandler) UpdateComment(c echo.Context) error {
	commentID, err := paramID(c, "id", "comment ID")
	if err != nil {
		return err
	}
	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.UpdateComment(c.Request().Context(), getActor(c), commentID, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, comment)
}

func (h *PostHandler) DeleteComment(c echo.Context) error {
	commentID, err := paramID(c, "id", "comment ID")
	if err != nil {
		return err
	}
	if err := h.content.DeleteComment(c.Request().Context(), getActor(c), commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleReaction adds the caller's reaction or removes it when already present
func (h *PostHandler) ToggleReaction(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	outcome, err := h.content.ToggleReaction(c.Request().Context(), getActor(c), postID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, outcome)
}

// GetReactions returns the reaction count and whether the caller has reacted
func (h *PostHandler) GetReactions(c echo.Context) error {
	postID, err := paramID(c, "id", "post ID")
	if err != nil {
		return err
	}
	summary, err := h.content.Reactions(c.Request().Context(), getActor(c), postID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, summary)
}
