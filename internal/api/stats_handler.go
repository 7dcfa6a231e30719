package api

import (
	"net/http"
	"strconv"

	"github.com/collab-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StatsHandler handles like-statistics endpoints
type StatsHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(services *service.Services, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		services: services,
		log:      log.With().Str("handler", "stats").Logger(),
	}
}

// GetArticleStats handles GET /api/stats/article/:articleId
func (h *StatsHandler) GetArticleStats(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	result, err := h.services.Stats.GetArticleStats(c.Request.Context(), c.Param("articleId"), period, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetGlobalStats handles GET /api/stats/global (admin)
func (h *StatsHandler) GetGlobalStats(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	result, err := h.services.Stats.GetGlobalStats(c.Request.Context(), period, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// CleanOrphaned handles POST /api/stats/clean-orphaned (admin)
func (h *StatsHandler) CleanOrphaned(c *gin.Context) {
	deleted, err := h.services.Stats.CleanOrphaned(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": deleted})
}
