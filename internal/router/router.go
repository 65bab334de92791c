// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	r "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/batisource/sourcing-backend/internal/cache"
	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/handlers"
	"github.com/batisource/sourcing-backend/internal/middleware"
	"github.com/batisource/sourcing-backend/internal/provider"
	"github.com/batisource/sourcing-backend/internal/queue"
	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/translate"
	"github.com/batisource/sourcing-backend/internal/utils"
)

func Initialize(db *gorm.DB, rdb *r.Client, cfg *config.Config) *gin.Engine {
	// Initialize services
	exchangeService := services.NewExchangeService(db, cfg.Exchange)
	searchLogService := services.NewSearchLogService(db)
	jobService := services.NewJobService(db, cfg.Search)
	materialService := services.NewMaterialService(db)

	providerClient := provider.NewClient(cfg.Provider, translate.New(), cfg.Exchange, exchangeService.Convert)

	var store cache.Store
	if cfg.Search.CacheBackend == "redis" && rdb != nil {
		store = cache.NewRedis(rdb, cfg.Search.CacheTTL)
	} else {
		store = cache.NewMemory(cfg.Search.CacheTTL)
	}

	var dispatcher services.Dispatcher
	if rdb != nil {
		dispatcher = queue.New(rdb, cfg.Worker.QueueName)
	}

	searchService := services.NewSearchService(providerClient, store, searchLogService, cfg.Provider, cfg.Search)
	orchestrator := services.NewOrchestrator(searchService, materialService, jobService, dispatcher, cfg.Search)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService, orchestrator)
	jobHandler := handlers.NewJobHandler(jobService, orchestrator)
	materialHandler := handlers.NewMaterialHandler(materialService)
	adminHandler := handlers.NewAdminHandler(jobService, exchangeService, searchLogService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	engine := gin.New()

	// Global middleware
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogMiddleware())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.GeneralRateLimit())

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := engine.Group("/v1")
	{
		// Search routes
		search := v1.Group("/search")
		search.Use(middleware.SearchRateLimit(), middleware.OptionalAuth())
		{
			search.GET("", searchHandler.SearchKeyword)
			search.GET("/image", searchHandler.SearchImage)
			search.POST("", searchHandler.SearchBatch)
		}

		// Job routes
		jobs := v1.Group("/jobs")
		jobs.Use(middleware.AuthRequired())
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.DELETE("/:id", jobHandler.CancelJob)
		}

		// Project material routes
		projects := v1.Group("/projects")
		projects.Use(middleware.AuthRequired())
		{
			projects.GET("/:id/materials", materialHandler.GetProjectMaterials)
			projects.GET("/:id/search-terms", materialHandler.GetProjectSearchTerms)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/jobs", jobHandler.ListJobs)
			admin.GET("/stats", adminHandler.GetJobStats)
			admin.GET("/exchange-rates", adminHandler.GetExchangeRate)
			admin.PUT("/exchange-rates", adminHandler.UpdateExchangeRate)
			admin.GET("/search-logs", adminHandler.ListSearchLogs)
		}
	}

	return engine
}
