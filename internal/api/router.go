package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sammywachtel/hardy-align/internal/config"
	"github.com/sammywachtel/hardy-align/internal/forcedaligner"
	"github.com/sammywachtel/hardy-align/internal/jobs"
	"github.com/sammywachtel/hardy-align/internal/progress"
)

// SetupRouter sets up the Gin router with all routes
func SetupRouter(cfg *config.Config, jobManager *jobs.Manager, aligner *forcedaligner.Client, cache *forcedaligner.Cache, hub *progress.Hub) *gin.Engine {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORS.AllowedOrigins,
		AllowMethods:     cfg.Server.CORS.AllowedMethods,
		AllowHeaders:     cfg.Server.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := NewHandler(jobManager, aligner, cache, hub)

	router.GET("/health", handler.HealthCheck)
	router.POST("/align", handler.Align)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", handler.ListJobs)
		jobRoutes.GET("/:job_id", handler.GetJob)
		jobRoutes.GET("/:job_id/logs", handler.GetJobLogs)
	}

	router.GET("/ws/jobs/:job_id", handler.WebSocketJob)
	router.GET("/ws/stats", handler.WebSocketStats)

	return router
}
