package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"promptstore-backend/internal/shared/middleware"
	"promptstore-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPromptRoutes(v1, c)
		setupCategoryRoutes(v1, c)
		setupModerationRoutes(v1, c)
	}

	return router
}

// ========================================
// PROMPT ROUTES
// ========================================
func setupPromptRoutes(v1 *gin.RouterGroup, c *container.Container) {
	prompts := v1.Group("/prompts")
	{
		prompts.GET("", c.BatchHandler.List)

		batch := prompts.Group("/batch")
		{
			batch.POST("/upload", c.BatchHandler.Upload)
			batch.GET("", c.BatchHandler.GetBatch)
			batch.DELETE("", c.BatchHandler.ClearBatch)
			batch.PUT("/rows/:id", c.BatchHandler.EditRow)
			batch.DELETE("/rows/:id", c.BatchHandler.DeleteRow)
			batch.POST("/selection", c.BatchHandler.SetSelection)
			batch.POST("/publish", c.BatchHandler.Publish)
		}
	}
}

// ========================================
// CATEGORY ROUTES
// ========================================
func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	categories := v1.Group("/categories")
	{
		categories.GET("", c.CategoryHandler.List)
	}
}

// ========================================
// MODERATION ROUTES
// ========================================
func setupModerationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	moderation := v1.Group("/moderation")
	{
		moderation.GET("/queue", c.ModerationHandler.GetQueue)
		moderation.POST("/selection", c.ModerationHandler.SetSelection)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Redis degrade không hạ status: drafts và cache là best-effort.
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
