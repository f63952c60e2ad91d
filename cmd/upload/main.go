package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"media-upload/internal/adapters/handlers/http/chi"
	"media-upload/internal/adapters/repository/postgres"
	"media-upload/internal/adapters/storage/local"
	"media-upload/internal/adapters/storage/minio"
	"media-upload/internal/adapters/tokenstore/file"
	"media-upload/internal/adapters/xapi"
	"media-upload/internal/config"
	"media-upload/internal/core/port"
	"media-upload/internal/core/service/auth"
	"media-upload/internal/core/service/upload"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"golang.org/x/oauth2"
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

	var (
		filePath   string
		postText   string
		sourceKind string
		reuseToken bool
	)
	flag.StringVar(&filePath, "file", cfg.Upload.FilePath, "Path of the video to upload (object key with -source minio)")
	flag.StringVar(&postText, "text", cfg.Upload.PostText, "Text of the post published with the video")
	flag.StringVar(&sourceKind, "source", "local", "Where the video is read from: local or minio")
	flag.BoolVar(&reuseToken, "reuse-token", false, "Use the token saved in AUTH_TOKEN_FILE instead of authorizing again")
	flag.Parse()

	if filePath == "" {
		logger.Error("a video is required, set -file or UPLOAD_FILE_PATH")
		os.Exit(1)
	}
	if cfg.Auth.ClientID == "" {
		logger.Error("CLIENT_ID is required")
		os.Exit(1)
	}

	source, err := initSource(ctx, sourceKind, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init media source", "error", err)
		os.Exit(1)
	}

	tokens, err := initTokenSource(ctx, cfg.Auth, reuseToken, logger)
	if err != nil {
		logger.Error("failed to authenticate", "error", err)
		os.Exit(1)
	}

	// Upload history is optional
	var history port.UploadSessionRepository
	if cfg.Database.Enabled() {
		db, err := initDB(cfg.Database)
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

	client := xapi.NewClient(cfg.XAPI, cfg.Retry, tokens, logger)
	uploadService := upload.NewUploadService(client, client, source, history, cfg.Upload, logger)

	post, err := uploadService.UploadAndPost(ctx, filePath, postText)
	if err != nil {
		logger.Error("failed to upload media", "error", err)
		os.Exit(1)
	}

	fmt.Println(string(post.Raw))
	logger.Info("done", "post_id", post.ID)
}

func initSource(ctx context.Context, kind string, cfg config.MinioConfig, logger *slog.Logger) (port.MediaSource, error) {
	switch kind {
	case "local":
		return local.NewSource(), nil
	case "minio":
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		adapter, err := minio.NewAdapter(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected local or minio", kind)
	}
}

func initTokenSource(ctx context.Context, cfg config.AuthConfig, reuse bool, logger *slog.Logger) (oauth2.TokenSource, error) {
	var store port.TokenStore
	if cfg.TokenFile != "" {
		store = file.NewStore(cfg.TokenFile)
	}

	if reuse {
		if store == nil {
			return nil, errors.New("-reuse-token needs AUTH_TOKEN_FILE")
		}
		token, err := store.Load()
		if err != nil {
			return nil, err
		}
		logger.Info("reusing saved token", "expiry", token.Expiry)
		refreshing := auth.NewOAuthConfig(cfg).TokenSource(ctx, token)
		return file.NewPersistingTokenSource(refreshing, store, token, logger), nil
	}

	var receiver port.RedirectReceiver
	switch cfg.RedirectMode {
	case "paste":
		receiver = auth.NewPasteReceiver(os.Stdin, os.Stdout)
	case "callback":
		callback, err := chi.NewCallbackReceiver(cfg.RedirectURI, cfg.CallbackTimeout, os.Stdout, logger)
		if err != nil {
			return nil, err
		}
		receiver = callback
	default:
		return nil, fmt.Errorf("unknown AUTH_REDIRECT_MODE %q, expected paste or callback", cfg.RedirectMode)
	}

	token, err := auth.NewAuthService(cfg, receiver, store, logger).Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(token), nil
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
