package handler

import (
	"net/http"

	"github.com/BloggingApp/blog-service/internal/config"
	"github.com/BloggingApp/blog-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const userIDKey = "user-id"

type Handler struct {
	services *service.Service
	logger   *zap.Logger
	cfg      config.HTTPConfig
	limiter  *ipRateLimiter
}

func New(services *service.Service, logger *zap.Logger, cfg config.HTTPConfig) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		cfg:      cfg,
		limiter:  newIPRateLimiter(cfg.RateLimitPerMinute),
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(h.requestIDMiddleware, h.loggerMiddleware, h.metricsMiddleware)
	r.Use(gin.CustomRecovery(h.recoverPanic))
	r.Use(cors.New(h.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth", h.rateLimitMiddleware)
		{
			auth.POST("/register", h.authRegister)
			auth.POST("/login", h.authLogin)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.postsGetAll)
			posts.GET("/:id", h.postsGetByID)

			authorized := posts.Group("", h.authMiddleware)
			{
				authorized.POST("", h.postsCreate)
				authorized.PUT("/:id", h.postsUpdate)
				authorized.DELETE("/:id", h.postsDelete)
				authorized.POST("/:id/react", h.postsReact)
				authorized.POST("/:id/comment", h.commentsCreate)
			}
		}
	}

	return r
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}

	if len(h.cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = h.cfg.AllowOrigins
	cfg.AllowCredentials = true
	return cfg
}

// getUserIDFromRequest returns the id stored by authMiddleware.
func (h *Handler) getUserIDFromRequest(c *gin.Context) string {
	return c.GetString(userIDKey)
}
