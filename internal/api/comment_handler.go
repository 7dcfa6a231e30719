package api

import (
	"net/http"
	"strconv"

	"github.com/collab-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// ListByArticle handles GET /api/comments/article/:articleId
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	list, err := h.services.Comment.ListByArticle(c.Request.Context(), c.Param("articleId"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create handles POST /api/comments. The REST path shares the socket path's
// core: broadcast to the article room and author notification included.
func (h *CommentHandler) Create(c *gin.Context) {
	var req struct {
		ArticleID       string `json:"articleId"`
		Content         string `json:"content"`
		ParentCommentID string `json:"parentCommentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claims := currentClaims(c)
	comment, err := h.services.Comment.CreateComment(c.Request.Context(),
		req.ArticleID, claims.UserID, claims.Username, req.Content, req.ParentCommentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "comment created", "comment": comment})
}

// Update handles PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claims := currentClaims(c)
	comment, err := h.services.Comment.Update(c.Request.Context(), c.Param("id"), claims.UserID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment updated", "comment": comment})
}

// Delete handles DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := currentClaims(c)
	if err := h.services.Comment.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ToggleLike handles POST /api/comments/:id/like
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	claims := currentClaims(c)
	comment, err := h.services.Comment.ToggleLike(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	liked := false
	for _, uid := range comment.Likes {
		if uid == claims.UserID {
			liked = true
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"likeCount": comment.LikeCount(), "userLiked": liked})
}
