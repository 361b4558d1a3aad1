package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SAP-F-2025/exam-trainer-service/internal/cache"
	"github.com/SAP-F-2025/exam-trainer-service/internal/config"
	"github.com/SAP-F-2025/exam-trainer-service/internal/handlers"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories/filestore"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/SAP-F-2025/exam-trainer-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.IsProduction())
	slogger := utils.ToSlogLogger(logger)

	layout, err := config.LoadExamLayout(cfg.ExamLayoutFile)
	if err != nil {
		return err
	}

	content, err := filestore.NewContentStore(cfg.ContentDir)
	if err != nil {
		return err
	}

	performance, credentials, err := openStores(cfg, slogger)
	if err != nil {
		return err
	}

	statsCache, err := openCache(cfg, slogger)
	if err != nil {
		return err
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	manager, err := services.NewServiceManager(services.Dependencies{
		Content:       content,
		Performance:   performance,
		Credentials:   credentials,
		Cache:         statsCache,
		Publisher:     publisher,
		Layout:        layout,
		StatsCacheTTL: cfg.StatsCacheTTL,
		BcryptCost:    cfg.BcryptCost,
		Logger:        slogger,
	})
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.LoggerMiddleware(logger),
		utils.ContextLogger(logger),
		handlers.CORSMiddleware(cfg.AllowedOrigin),
	)
	handlers.NewHandlerManager(manager, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStores(cfg *config.Config, logger *slog.Logger) (repositories.PerformanceRepository, repositories.CredentialRepository, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Using PostgreSQL storage")
		return postgres.NewPerformancePostgreSQL(db), postgres.NewCredentialPostgreSQL(db), nil
	default:
		performance, err := filestore.NewPerformanceStore(filepath.Join(cfg.DataDir, filestore.PerformanceFileName))
		if err != nil {
			return nil, nil, err
		}
		credentials, err := filestore.NewCredentialStore(filepath.Join(cfg.DataDir, filestore.CredentialFileName))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using JSON file storage", "data_dir", cfg.DataDir)
		return performance, credentials, nil
	}
}

func openCache(cfg *config.Config, logger *slog.Logger) (cache.CacheService, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, dashboard stats are not cached")
		return cache.NewNoopCache(), nil
	}
	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisCache(client, logger, "exam-trainer:"), nil
}
