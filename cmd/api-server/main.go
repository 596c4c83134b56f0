package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-request-api/api/swagger"
	"github.com/noah-isme/campus-request-api/internal/docparse"
	"github.com/noah-isme/campus-request-api/internal/extract"
	"github.com/noah-isme/campus-request-api/internal/handler"
	"github.com/noah-isme/campus-request-api/internal/middleware"
	"github.com/noah-isme/campus-request-api/internal/models"
	"github.com/noah-isme/campus-request-api/internal/repository"
	"github.com/noah-isme/campus-request-api/internal/service"
	"github.com/noah-isme/campus-request-api/pkg/cache"
	"github.com/noah-isme/campus-request-api/pkg/config"
	"github.com/noah-isme/campus-request-api/pkg/database"
	"github.com/noah-isme/campus-request-api/pkg/jobs"
	"github.com/noah-isme/campus-request-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-request-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-request-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-request-api/pkg/storage"
)

// @title Campus Request API
// @version 0.1.0
// @description Academic calendar ingestion and request availability service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.RunMigrations(db.DB, logr); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, date check caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	uploadRepo := repository.NewUploadRepository(db)
	eventRepo := repository.NewEventRepository(db)
	logRepo := repository.NewParsingLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	healthRepo := repository.NewHealthRepository(db)

	metricsSvc := service.NewMetricsService()
	settingsSvc := service.NewSettingsService(settingsRepo, cacheRepo, logr)
	ingestionSvc := service.NewIngestionService(
		uploadRepo, eventRepo, logRepo,
		docparse.New(), extract.New(),
		store, settingsSvc, cacheRepo, metricsSvc, logr,
	)
	availabilitySvc := service.NewAvailabilityService(
		eventRepo, settingsSvc, cacheRepo, metricsSvc,
		cfg.Calendar.CheckCacheTTL, cfg.Calendar.SearchHorizon, logr,
	)
	eventQuerySvc := service.NewEventQueryService(eventRepo, uploadRepo, settingsSvc, logr)
	requestSvc := service.NewRequestService(requestRepo, availabilitySvc, logr)
	statusSvc := service.NewStatusService(settingsSvc, uploadRepo, eventRepo, availabilitySvc, healthRepo, logr)
	uploadSvc := service.NewUploadService(uploadRepo, logRepo, store, cacheRepo, logr)
	authSvc := service.NewAuthService(cfg.JWT, logr)
	cleanupSvc := service.NewCleanupService(uploadRepo, store, cfg.Uploads.FailedFileTTL, logr)

	cleanupQueue := jobs.NewQueue("upload-cleanup", func(ctx context.Context, _ jobs.Job) error {
		return cleanupSvc.Run(ctx)
	}, jobs.QueueConfig{Logger: logr})
	cleanupQueue.Start(context.Background())
	defer cleanupQueue.Stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Uploads.CleanupSchedule, func() {
		if err := cleanupQueue.Enqueue(jobs.Job{Type: "purge-failed-uploads"}); err != nil {
			logr.Warn("failed to enqueue cleanup job")
		}
	}); err != nil {
		logr.Sugar().Fatalw("invalid cleanup schedule", "schedule", cfg.Uploads.CleanupSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	calendarHandler := handler.NewCalendarHandler(ingestionSvc, uploadSvc, store, cfg.Uploads)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, statusSvc)
	eventsHandler := handler.NewEventsHandler(eventQuerySvc, cfg.Exports.Enabled)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	calendar := api.Group("/calendar")
	calendar.GET("/status", availabilityHandler.Status)
	calendar.GET("/check/:date", availabilityHandler.Check)
	calendar.GET("/next-available", availabilityHandler.NextAvailable)
	calendar.GET("/events", eventsHandler.List)
	calendar.GET("/feed.ics", eventsHandler.Feed)

	requests := api.Group("/requests", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.ListMine)

	admin := api.Group("/admin/calendar", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	admin.POST("/upload", calendarHandler.Upload)
	admin.GET("/history", calendarHandler.History)
	admin.GET("/uploads/:id/logs", calendarHandler.Logs)
	admin.DELETE("/uploads/:id", calendarHandler.Delete)
	admin.GET("/settings", settingsHandler.Get)
	admin.PUT("/settings", settingsHandler.Update)
	admin.GET("/events/export", eventsHandler.Export)
	admin.GET("/validate", availabilityHandler.Validate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
