package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"wartungsmanager/internal/clock"
	"wartungsmanager/internal/comment"
	"wartungsmanager/internal/config"
	"wartungsmanager/internal/db"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/health"
	"wartungsmanager/internal/logging"
	"wartungsmanager/internal/maintenance"
	"wartungsmanager/internal/middleware"
	"wartungsmanager/internal/scheduler"
	"wartungsmanager/internal/task"
	"wartungsmanager/internal/worker"
	"wartungsmanager/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	jobStatusSweep   = "status-sweep"
	jobDocumentPurge = "document-purge"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	gdb, err := db.ConnectDb(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Database connection failed")
	}
	defer db.CloseDb(gdb, logger)

	// Migrate database schema
	if err := db.Migrate(gdb); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	// Initialize Redis
	redisClient := redis.InitRedis(ctx, cfg.RedisAddress, logger)
	cache := redis.NewCache(redisClient)

	pool := worker.NewWorkerPool(cfg.WorkerPoolSize, logger)
	clk := clock.Real()

	// Initialize service
	docService := document.NewService(document.NewRepository(gdb), logger)
	taskService := task.NewService(task.NewRepository(gdb), clk, logger)
	commentService := comment.NewService(comment.NewRepository(gdb), logger)
	maintenanceService := maintenance.NewService(
		maintenance.NewRepository(gdb),
		cache,
		pool,
		clk,
		logger,
		cfg.ListCacheTTL,
	)

	jobs := newScheduler(cfg, cache, logger, maintenanceService, docService)
	jobs.Start(ctx)

	healthServer := health.NewServer(logger)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.WithError(err).Fatal("gRPC health listener failed")
	}
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			logger.WithError(err).Error("gRPC health server stopped")
		}
	}()

	authMw := &middleware.Auth{
		JWTSecret:      []byte(cfg.JWTSecret),
		InternalSecret: cfg.InternalSecret,
	}
	router := setupRouter(cfg, logger, authMw, handlers{
		maintenance: maintenance.NewHandler(maintenanceService),
		task:        task.NewHandler(taskService),
		comment:     comment.NewHandler(commentService),
		document:    document.NewHandler(docService),
		jobs:        scheduler.NewHandler(jobs),
		health:      health.Handler(map[string]health.Pinger{"database": databasePinger(gdb)}),
	})

	// Server configuration
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.WithField("port", cfg.ServerPort).Info("Server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()
	healthServer.SetServing(true)

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")
	healthServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}

	select {
	case <-jobs.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Background jobs still running at shutdown")
	}
	pool.Shutdown()
	healthServer.Shutdown()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Error("Redis close error")
		}
	}
	logger.Info("Server shutdown complete")
}

func newScheduler(
	cfg config.Config,
	cache *redis.Cache,
	logger logrus.FieldLogger,
	maintenanceService maintenance.Service,
	docService document.Service,
) *scheduler.Scheduler {
	location := time.Local
	if cfg.CronUseUTC {
		location = time.UTC
	}
	jobs := scheduler.New(cache, cfg.SweepLockTTL, location, logger)

	err := jobs.Register(jobStatusSweep, cfg.StatusSweepCron, func(ctx context.Context, runID string) error {
		_, err := maintenanceService.CheckStatusesEveryDay(ctx, runID)
		return err
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule status sweep")
	}

	err = jobs.Register(jobDocumentPurge, cfg.DocumentPurgeCron, func(ctx context.Context, runID string) error {
		purged, err := docService.PurgeOrphanedArchived(ctx)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"job": jobDocumentPurge, "run_id": runID, "purged": purged}).
			Info("Orphaned archived documents purged")
		return nil
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule document purge")
	}
	return jobs
}

func databasePinger(gdb *gorm.DB) health.Pinger {
	return func(ctx context.Context) error {
		return db.Ping(ctx, gdb)
	}
}
