package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"media-upload/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio, reading media objects to upload
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", slog.String("bucket", cfg.BucketName))
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// Size returns the object size
func (a *Adapter) Size(ctx context.Context, fileKey string) (int64, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to get object info: %w", err)
	}
	return info.Size, nil
}

// Open streams the object
func (a *Adapter) Open(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	object, err := a.client.GetObject(ctx, a.config.BucketName, fileKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return object, nil
}

// ContentType returns the object content type and user metadata
func (a *Adapter) ContentType(ctx context.Context, fileKey string) (string, map[string]string, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to get object info: %w", err)
	}
	return info.ContentType, info.UserMetadata, nil
}
