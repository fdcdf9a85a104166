package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniarchive/archive-api/api/swagger"
	"github.com/uniarchive/archive-api/internal/handler"
	"github.com/uniarchive/archive-api/internal/middleware"
	"github.com/uniarchive/archive-api/internal/policy"
	"github.com/uniarchive/archive-api/internal/repository"
	"github.com/uniarchive/archive-api/internal/service"
	"github.com/uniarchive/archive-api/pkg/cache"
	"github.com/uniarchive/archive-api/pkg/config"
	"github.com/uniarchive/archive-api/pkg/database"
	"github.com/uniarchive/archive-api/pkg/logger"
	corsmiddleware "github.com/uniarchive/archive-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniarchive/archive-api/pkg/middleware/requestid"
)

// @title Archive Records API
// @version 1.0.0
// @description Role-based management of physical archive records, loans and activity logs
// @BasePath /api/v1
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, validate, logr, service.UserServiceConfig{
		DefaultResetPassword: cfg.Identity.DefaultResetPassword,
		MinPasswordLength:    cfg.Identity.MinPasswordLength,
	})
	locationSvc := service.NewLocationService(locationRepo, auditRepo, validate, logr)
	recordSvc := service.NewRecordService(recordRepo, locationRepo, loanRepo, auditRepo, cacheSvc, validate, logr)
	loanSvc := service.NewLoanService(loanRepo, recordRepo, auditRepo, cacheSvc, logr)
	exportArchive, err := service.NewExportArchive(cfg.Audit.ExportDir, cfg.Audit.ExportKeepFor, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
	}
	exportArchive.Start(context.Background())
	defer exportArchive.Stop()

	auditSvc := service.NewAuditService(auditRepo, exportArchive, service.AuditServiceConfig{
		RetentionWindow: cfg.Audit.RetentionWindow,
		ExportMaxRows:   cfg.Audit.ExportMaxRows,
	}, logr)
	dashboardSvc := service.NewDashboardService(recordRepo, loanRepo, auditSvc, cacheSvc, service.DashboardServiceConfig{
		CacheTTL:       cfg.Dashboard.CacheTTL,
		RecentActivity: cfg.Dashboard.RecentActivity,
	}, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	locationHandler := handler.NewLocationHandler(locationSvc)
	recordHandler := handler.NewRecordHandler(recordSvc)
	loanHandler := handler.NewLoanHandler(loanSvc)
	logHandler := handler.NewLogHandler(auditSvc)
	homeHandler := handler.NewHomeHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/home", middleware.Require(policy.OpHomeView), homeHandler.Summary)

	records := secured.Group("/records")
	{
		records.GET("", middleware.Require(policy.OpRecordRead), recordHandler.List)
		records.GET("/search", middleware.Require(policy.OpRecordRead), recordHandler.Search)
		records.GET("/filter/:status", middleware.Require(policy.OpRecordRead), recordHandler.Filter)
		records.GET("/:id", middleware.Require(policy.OpRecordRead), recordHandler.Get)
		records.POST("", middleware.Require(policy.OpRecordCreate), recordHandler.Create)
		records.PUT("/:id", middleware.Require(policy.OpRecordUpdate), recordHandler.Update)
		records.DELETE("/:id", middleware.Require(policy.OpRecordDelete), recordHandler.Delete)
		records.POST("/:id/borrow", middleware.Require(policy.OpLoanBorrow), loanHandler.Borrow)
	}

	loans := secured.Group("/loans")
	{
		loans.GET("", middleware.Require(policy.OpLoanRead), loanHandler.Overview)
		// Borrower-self returns are authorised inside the service.
		loans.POST("/:id/return", loanHandler.Return)
	}

	locations := secured.Group("/locations")
	{
		locations.GET("", middleware.Require(policy.OpRecordRead), locationHandler.List)
		locations.POST("", middleware.Require(policy.OpLocationManage), locationHandler.Create)
		locations.PUT("/:id", middleware.Require(policy.OpLocationManage), locationHandler.Update)
		locations.DELETE("/:id", middleware.Require(policy.OpLocationManage), locationHandler.Delete)
	}

	logs := secured.Group("/logs", middleware.Require(policy.OpLogView))
	{
		logs.GET("", logHandler.List)
		logs.GET("/export", logHandler.Export)
	}

	users := secured.Group("/users", middleware.Require(policy.OpUserManage))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.POST("/:id/deactivate", userHandler.Deactivate)
		users.POST("/:id/activate", userHandler.Activate)
		users.POST("/:id/reset-password", userHandler.ResetPassword)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
