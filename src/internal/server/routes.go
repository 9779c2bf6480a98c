package server

import (
	"time"
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/dependency"
	"workspace-core-svc/src/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var log = *logrus.StandardLogger()

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupAPIRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Info("Health check endpoint requested")

		mongoStatus := "ok"
		if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := redisClient.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   mongoStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	})

	router.GET("health/detailed", func(c *gin.Context) {
		log.Info("Detailed health check endpoint requested")

		c.JSON(200, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database": gin.H{
					"mongodb": getStatus(isMongoConnected(mongodb, c)),
					"redis":   getStatus(isRedisConnected(redisClient.Client, c)),
				},
				"services": gin.H{
					"consumer":  "operational",
					"workspace": "operational",
					"cache":     "operational",
				},
			},
		})
	})
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	// API status endpoint
	router.GET("/api/v1/status", func(c *gin.Context) {
		log.Info("API status requested")
		c.JSON(200, gin.H{
			"api_version": "v1",
			"status":      "operational",
			"service":     "workspace-core-svc",
		})
	})
}

func setupAPIRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := middleware.NewAuthMiddleware(
		deps.Config.Security.JwtKey,
		deps.ContextService,
	)

	workspaceHandler := deps.WorkspaceHandler
	activityLogHandler := deps.ActivityLogHandler

	workspaces := router.Group("/api/v1/workspaces")
	workspaces.Use(authMiddleware.RequireAuth())
	{
		workspaces.POST("", workspaceHandler.Create)
		workspaces.GET("", workspaceHandler.List)
		workspaces.GET("/:id", workspaceHandler.Get)
		workspaces.PUT("/:id", workspaceHandler.Update)
		workspaces.PATCH("/:id", workspaceHandler.Patch)
		workspaces.DELETE("/:id", workspaceHandler.Delete)
		workspaces.POST("/:id/invitations", workspaceHandler.Invite)
		workspaces.PATCH("/:id/members/access", workspaceHandler.UpdateMemberAccess)
	}

	members := router.Group("/api/v1/members")
	members.Use(authMiddleware.RequireAuth())
	{
		members.GET("/:userId/default", workspaceHandler.DefaultWorkspace)
	}

	invitations := router.Group("/api/v1/invitations")
	invitations.Use(authMiddleware.RequireAuth())
	{
		invitations.POST("/:id/accept", workspaceHandler.AcceptInvitation)
	}

	// Activity log queries are always scoped to the caller's workspace context
	activityLogs := router.Group("/api/v1/activity-logs")
	activityLogs.Use(authMiddleware.RequireAuth(), authMiddleware.RequireWorkspace())
	{
		activityLogs.GET("", activityLogHandler.Search)
		activityLogs.GET("/count", activityLogHandler.Count)
		activityLogs.GET("/types", activityLogHandler.Types)
	}
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Workspace-Id")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
