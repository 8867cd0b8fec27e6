package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studiosync/billing-api/api/swagger"
	"github.com/studiosync/billing-api/internal/gateway"
	"github.com/studiosync/billing-api/internal/handler"
	"github.com/studiosync/billing-api/internal/middleware"
	"github.com/studiosync/billing-api/internal/repository"
	"github.com/studiosync/billing-api/internal/service"
	"github.com/studiosync/billing-api/pkg/cache"
	"github.com/studiosync/billing-api/pkg/config"
	"github.com/studiosync/billing-api/pkg/database"
	"github.com/studiosync/billing-api/pkg/jobs"
	"github.com/studiosync/billing-api/pkg/logger"
	corsmiddleware "github.com/studiosync/billing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studiosync/billing-api/pkg/middleware/requestid"
)

// @title StudioSync Billing API
// @version 1.0.0
// @description Charge calculation, posting and auto-pay for dance studio billing
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	cacheEnabled := err == nil
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary caching disabled", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cacheEnabled {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Billing.SummaryCacheTTL, logr, true)
	}

	familyRepo := repository.NewFamilyRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	ratePlanRepo := repository.NewRatePlanRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	chargeRepo := repository.NewChargeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	chargeSvc := service.NewChargeService(
		familyRepo,
		studentRepo,
		classRepo,
		ratePlanRepo,
		discountRepo,
		feeRepo,
		settingsRepo,
		chargeRepo,
		cacheSvc,
		metricsSvc,
		logr,
		cfg.Billing.SummaryCacheTTL,
	)
	exportSvc := service.NewExportService(chargeSvc, logr)

	postingSvc := service.NewPostingService(chargeSvc, familyRepo, chargeRepo, settingsRepo, metricsSvc, logr, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Posting.WorkerRetries,
		RetryDelay: cfg.Posting.RetryDelay,
		Logger:     logr,
	})

	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout, logr)
	paymentSvc := service.NewPaymentService(gatewayClient, paymentRepo, chargeRepo, familyRepo, chargeSvc, metricsSvc, logr)

	chargeHandler := handler.NewChargeHandler(chargeSvc, exportSvc)
	postingHandler := handler.NewPostingHandler(postingSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	api := r.Group(cfg.APIPrefix)
	{
		charges := api.Group("/charges")
		{
			charges.POST("/calculate", chargeHandler.Calculate)
			charges.POST("/post", postingHandler.Post)
			charges.GET("", chargeHandler.List)
			charges.GET("/summary", chargeHandler.Summary)
			charges.GET("/:id", chargeHandler.Get)
			charges.GET("/:id/statement", chargeHandler.Statement)
		}
		payments := api.Group("/payments")
		{
			payments.POST("/autopay", paymentHandler.AutoPay)
		}
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postingSvc.StartQueue(ctx)
	defer postingSvc.StopQueue()

	var scheduler *cron.Cron
	if cfg.Posting.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Posting.Schedule, func() {
			if err := postingSvc.EnqueueScheduledRun(context.Background()); err != nil {
				logr.Warn("failed to enqueue posting run", zap.Error(err))
			}
		})
		if err != nil {
			logr.Sugar().Fatalw("invalid posting schedule", "schedule", cfg.Posting.Schedule, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logr.Sugar().Infow("posting schedule enabled", "schedule", cfg.Posting.Schedule)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
