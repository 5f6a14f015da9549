package handlers

import (
	"net/http"

	"github.com/Platypus4356/mailTrackerServer/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.GET("/track/:tracking_id", h.ServeTrackingPixel)

	api := r.Group("/api")
	{
		api.POST("/emails", h.ProvisionEmail)
		api.GET("/email/:email_id/status", h.EmailStatus)
		api.POST("/emails/status", h.BulkEmailStatus)
		api.GET("/logs", h.DumpLogs)
	}

	return r
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
