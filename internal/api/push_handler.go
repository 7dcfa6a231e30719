package api

import (
	"net/http"

	"github.com/collab-blog-api/internal/config"
	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PushHandler handles push subscription endpoints
type PushHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *PushHandler {
	return &PushHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "push").Logger(),
	}
}

// GetVapidPublicKey handles GET /api/push/vapid-public-key
func (h *PushHandler) GetVapidPublicKey(c *gin.Context) {
	if h.cfg.Push.VAPIDPublicKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "VAPID public key not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.cfg.Push.VAPIDPublicKey})
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req struct {
		Subscription struct {
			Endpoint string                  `json:"endpoint"`
			Keys     models.SubscriptionKeys `json:"keys"`
		} `json:"subscription"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription data"})
		return
	}

	claims := currentClaims(c)
	sub, err := h.services.Subscription.Subscribe(c.Request.Context(), claims.UserID, req.Subscription.Endpoint, req.Subscription.Keys)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "push subscription created", "subscription": sub})
}

// Unsubscribe handles POST /api/push/unsubscribe
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claims := currentClaims(c)
	if err := h.services.Subscription.Unsubscribe(c.Request.Context(), claims.UserID, req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(c *gin.Context) {
	claims := currentClaims(c)
	subs, err := h.services.Subscription.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// DeleteSubscription handles DELETE /api/push/subscriptions/:id
func (h *PushHandler) DeleteSubscription(c *gin.Context) {
	claims := currentClaims(c)
	if err := h.services.Subscription.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription deleted"})
}

// SendTest handles POST /api/push/test
func (h *PushHandler) SendTest(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	// Body is optional for test sends
	c.ShouldBindJSON(&req)

	claims := currentClaims(c)
	if err := h.services.Subscription.SendTest(c.Request.Context(), claims.UserID, req.Title, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "test notification sent"})
}
