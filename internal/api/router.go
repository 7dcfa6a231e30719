package api

import (
	"net/http"
	"time"

	"github.com/collab-blog-api/internal/auth"
	"github.com/collab-blog-api/internal/config"
	"github.com/collab-blog-api/internal/realtime"
	"github.com/collab-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, ws *realtime.Server, verifier *auth.Verifier, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.FrontendURL))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	pushHandler := NewPushHandler(services, cfg, log)
	statsHandler := NewStatsHandler(services, log)

	authRequired := authMiddleware(verifier)

	// Health check
	router.GET("/health", healthCheck(ws))

	// Real-time socket endpoint; the handshake authenticates itself
	router.GET("/ws", ws.HandleConnection)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
		}

		users := api.Group("/users", authRequired)
		{
			users.GET("", requireRole("admin"), authHandler.ListUsers)
			users.GET("/:id", authHandler.GetUser)
			users.PUT("/:id/role", requireRole("admin"), authHandler.UpdateRole)
		}

		articles := api.Group("/articles", authRequired)
		{
			articles.POST("", articleHandler.Create)
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Update)
			articles.DELETE("/:id", articleHandler.Delete)
			articles.GET("/:id/like", articleHandler.CheckLike)
			articles.POST("/:id/like", articleHandler.ToggleLike)
		}

		comments := api.Group("/comments", authRequired)
		{
			comments.GET("/article/:articleId", commentHandler.ListByArticle)
			comments.POST("", commentHandler.Create)
			comments.PUT("/:id", commentHandler.Update)
			comments.DELETE("/:id", commentHandler.Delete)
			comments.POST("/:id/like", commentHandler.ToggleLike)
		}

		push := api.Group("/push")
		{
			push.GET("/vapid-public-key", pushHandler.GetVapidPublicKey)
			push.POST("/subscribe", authRequired, pushHandler.Subscribe)
			push.POST("/unsubscribe", authRequired, pushHandler.Unsubscribe)
			push.GET("/subscriptions", authRequired, pushHandler.ListSubscriptions)
			push.DELETE("/subscriptions/:id", authRequired, pushHandler.DeleteSubscription)
			push.POST("/test", authRequired, pushHandler.SendTest)
		}

		stats := api.Group("/stats", authRequired)
		{
			stats.GET("/article/:articleId", statsHandler.GetArticleStats)
			stats.GET("/global", requireRole("admin"), statsHandler.GetGlobalStats)
			stats.POST("/clean-orphaned", requireRole("admin"), statsHandler.CleanOrphaned)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(ws *realtime.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"timestamp":       time.Now().Format(time.RFC3339),
			"service":         "collab-blog-api",
			"connected_users": ws.ConnectedCount(),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
