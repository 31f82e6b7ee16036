package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/qbitmaster/qbitmaster-api/api/swagger"
	"github.com/qbitmaster/qbitmaster-api/internal/handler"
	"github.com/qbitmaster/qbitmaster-api/internal/jackett"
	"github.com/qbitmaster/qbitmaster-api/internal/middleware"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/internal/poller"
	"github.com/qbitmaster/qbitmaster-api/internal/qbit"
	"github.com/qbitmaster/qbitmaster-api/internal/repository"
	"github.com/qbitmaster/qbitmaster-api/internal/service"
	"github.com/qbitmaster/qbitmaster-api/pkg/cache"
	"github.com/qbitmaster/qbitmaster-api/pkg/config"
	"github.com/qbitmaster/qbitmaster-api/pkg/database"
	"github.com/qbitmaster/qbitmaster-api/pkg/jobs"
	"github.com/qbitmaster/qbitmaster-api/pkg/logger"
	corsmiddleware "github.com/qbitmaster/qbitmaster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/qbitmaster/qbitmaster-api/pkg/middleware/requestid"
)

// @title QBitMaster API
// @version 1.0.0
// @description Multi-user qBittorrent dashboard with Jackett search and signed download links
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qbitClient := qbit.NewClient(cfg.QBittorrent, logr)
	if err := qbitClient.Login(ctx); err != nil {
		logr.Sugar().Warnw("qbittorrent login failed, continuing degraded", "error", err)
	}
	jackettClient := jackett.NewClient(cfg.Jackett, logr)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	torrentRepo := repository.NewTorrentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	signingRepo := repository.NewSigningConfigRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Jackett.SearchCacheTTL, logr, true)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "qbitmaster-api",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	groupService := service.NewGroupService(groupRepo, userRepo, validate, logr)
	settingsService := service.NewDownloadSettingsService(signingRepo, userRepo, validate, logr)
	torrentService := service.NewTorrentService(torrentRepo, groupRepo, userRepo, qbitClient, settingsService, validate, logr)
	jackettService := service.NewJackettService(jackettClient, cacheService, cfg.Jackett, logr)
	notificationService := service.NewNotificationService(notificationRepo, logr)
	healthService := service.NewHealthService(db, redisClient, qbitClient, jackettClient, logr)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	groupHandler := handler.NewGroupHandler(groupService)
	torrentHandler := handler.NewTorrentHandler(torrentService, userService)
	jackettHandler := handler.NewJackettHandler(jackettService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	settingsHandler := handler.NewDownloadSettingsHandler(settingsService)
	healthHandler := handler.NewHealthHandler(healthService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/ready", metricsHandler.Health)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", healthHandler.Check)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	torrents := api.Group("/torrents", middleware.JWT(authService))
	{
		torrents.GET("", torrentHandler.List)
		torrents.GET("/stats", torrentHandler.Stats)
		torrents.POST("/magnet", torrentHandler.AddMagnet)
		torrents.POST("/file", torrentHandler.AddFile)
		torrents.DELETE("/:id", torrentHandler.Delete)
		torrents.POST("/:id/pause", torrentHandler.Pause)
		torrents.POST("/:id/resume", torrentHandler.Resume)
		torrents.GET("/:id/files", torrentHandler.Files)
		torrents.POST("/:id/download-link", torrentHandler.DownloadLink)
	}

	jackettRoutes := api.Group("/jackett", middleware.JWT(authService))
	{
		jackettRoutes.GET("/search", jackettHandler.Search)
		jackettRoutes.GET("/indexers", jackettHandler.Indexers)
	}

	notifications := api.Group("/notifications", middleware.JWT(authService))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.GET("/groups", groupHandler.List)
		admin.GET("/groups/:id", groupHandler.Get)
		admin.POST("/groups", groupHandler.Create)
		admin.PUT("/groups/:id", groupHandler.Update)
		admin.DELETE("/groups/:id", groupHandler.Delete)

		admin.GET("/downloads/settings", settingsHandler.Get)
		admin.PUT("/downloads/settings", settingsHandler.Update)
		admin.GET("/downloads/proxy-config", settingsHandler.ProxyConfig)

		admin.GET("/system/metrics", metricsHandler.System)
	}

	var completionQueue *jobs.Queue
	if cfg.Notifications.Enabled {
		completionQueue = jobs.NewQueue("completions", poller.CompletionHandler(notificationService, logr), jobs.QueueConfig{
			Workers:    cfg.Notifications.WorkerCount,
			MaxRetries: cfg.Notifications.WorkerRetries,
			Logger:     logr,
		})
		completionQueue.Start(ctx)
		defer completionQueue.Stop()

		completionPoller := poller.New(torrentRepo, qbitClient, completionQueue, cfg.Notifications.PollInterval, logr)
		go completionPoller.Run(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
