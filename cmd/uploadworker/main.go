package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"media-upload/internal/adapters/eventbroker/nats"
	"media-upload/internal/adapters/repository/postgres"
	"media-upload/internal/adapters/storage/minio"
	"media-upload/internal/adapters/tokenstore/file"
	"media-upload/internal/adapters/xapi"
	"media-upload/internal/config"
	"media-upload/internal/core/port"
	"media-upload/internal/core/service/auth"
	"media-upload/internal/core/service/cleanup"
	"media-upload/internal/core/service/mediaevent"
	"media-upload/internal/core/service/upload"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := errors.Join(cfg.Minio.Validate(), cfg.NATS.Validate()); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.TokenFile == "" {
		logger.Error("AUTH_TOKEN_FILE is required, authorize once with the upload command first")
		os.Exit(1)
	}

	// Token saved by the upload command, refreshed and saved again as it expires
	store := file.NewStore(cfg.Auth.TokenFile)
	token, err := store.Load()
	if err != nil {
		logger.Error("failed to load token", "error", err)
		os.Exit(1)
	}
	tokens := file.NewPersistingTokenSource(auth.NewOAuthConfig(cfg.Auth).TokenSource(ctx, token), store, token, logger)

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	// Upload history is optional, without it stale uploads are not cleaned up
	var history port.UploadSessionRepository
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = initDB(cfg.Database)
		if err != nil {
			logger.Error("failed to init database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
		history = postgres.NewSQLUploadSessionRepository(db)
		logger.Info("db connection established")
	}

	// Initialize services
	client := xapi.NewClient(cfg.XAPI, cfg.Retry, tokens, logger)
	uploadService := upload.NewUploadService(client, client, minioAdapter, history, cfg.Upload, logger)
	mediaEventService := mediaevent.NewMediaEventService(minioAdapter, uploadService, cfg.Worker, logger)

	// Initialize NATS consumer
	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	if err := natsConsumer.EnsureStream(ctx); err != nil {
		logger.Error("failed to ensure NATS stream", "error", err)
		os.Exit(1)
	}

	if err := natsConsumer.Subscribe(ctx, mediaEventService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS subscription active")

	var wg sync.WaitGroup
	if history != nil && cfg.Worker.CleanupEvery > 0 {
		cleanupService := cleanup.NewCleanupService(history, cfg.Worker.SessionTTL, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			initCleanupTask(ctx, cleanupService, cfg.Worker.CleanupEvery, logger)
		}()
	}

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("gracefully shutting down upload worker")

	if err := natsConsumer.Close(); err != nil {
		logger.Error("failed to close NATS consumer during shutdown", "error", err)
	}
	wg.Wait()

	logger.Info("upload worker shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			if err := service.CleanupStaleSessions(ctx, time.Now()); err != nil {
				logger.Error("failed to cleanup stale uploads", "error", err)
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}
}
