package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/orgpulse/orgpulse/internal/handlers"
	"github.com/orgpulse/orgpulse/internal/middleware"
	"github.com/orgpulse/orgpulse/internal/repositories"
	"github.com/orgpulse/orgpulse/internal/services"
	"github.com/orgpulse/orgpulse/internal/workers"
	"github.com/orgpulse/orgpulse/pkg/config"
	"github.com/orgpulse/orgpulse/pkg/database"
	"github.com/orgpulse/orgpulse/pkg/logger"
)

func main() {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Storage layer
	eventRepo := repositories.NewEventRepository(database.DB)
	starRepo := repositories.NewStarRepository(database.DB)
	repoRepo := repositories.NewRepositoryRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)

	// Aggregation pipeline
	pipeline := config.AppConfig.Pipeline
	dedupService := services.NewDedupService()
	historyService := services.NewHistoryService(dedupService)
	rankingService := services.NewRankingService(pipeline.Denylist, pipeline.RankingLimit)
	exportService := services.NewExportService(pipeline.OutputDir)
	pipelineService := services.NewPipelineService(
		eventRepo, starRepo, repoRepo,
		historyService, rankingService, exportService,
		pipeline.StartDate,
	)

	// Fetch layer and scheduling
	githubService := services.NewGitHubService(config.AppConfig.GitHub.Token, config.AppConfig.GitHub.Organization)
	schedulerService := services.NewSchedulerService(githubService, repoRepo, jobRepo, pipeline.RepositoryLimit)

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(jobRepo, eventRepo, starRepo, githubService, pipelineService)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	setupRoutes(router, exportService, schedulerService, repoRepo)

	// Start workers and scheduler
	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	schedulerService.StartScheduler(schedulerCtx)

	// Setup server
	server := &http.Server{
		Addr:    ":" + config.AppConfig.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Errorf("server shutdown error")
	}
	logger.Info("server stopped")
}

func setupRoutes(
	router *gin.Engine,
	exportService *services.ExportService,
	schedulerService *services.SchedulerService,
	repoRepo *repositories.RepositoryRepository,
) {
	dashboardHandler := handlers.NewDashboardHandler(exportService, schedulerService, repoRepo)
	healthHandler := handlers.NewHealthHandler()

	api := router.Group("/api")
	{
		api.GET("/contributors", dashboardHandler.Contributors)
		api.GET("/stars", dashboardHandler.Stars)
		api.GET("/rankings", dashboardHandler.Rankings)
		api.GET("/repositories", dashboardHandler.Repositories)
		api.POST("/refresh", dashboardHandler.Refresh)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
