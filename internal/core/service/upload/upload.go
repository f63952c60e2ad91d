package upload

import (
	"context"
	"fmt"
	"log/slog"
	"media-upload/internal/config"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/port"
	"time"
)

const defaultChunkSize = 4 * 1024 * 1024

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures the upload service
type Option func(*uploadService)

// WithSleep replaces the wait used between STATUS polls
func WithSleep(sleep SleepFunc) Option {
	return func(u *uploadService) {
		u.sleep = sleep
	}
}

type uploadService struct {
	media     port.MediaAPI
	posts     port.PostAPI
	source    port.MediaSource
	history   port.UploadSessionRepository
	uploadCfg config.UploadConfig
	logger    *slog.Logger
	sleep     SleepFunc
}

// NewUploadService creates a new upload service. history may be nil when no upload history is kept.
func NewUploadService(media port.MediaAPI, posts port.PostAPI, source port.MediaSource, history port.UploadSessionRepository, cfg config.UploadConfig, logger *slog.Logger, opts ...Option) port.UploadService {
	u := &uploadService{
		media:     media,
		posts:     posts,
		source:    source,
		history:   history,
		uploadCfg: cfg,
		logger:    logger,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewSession sizes the media and opens a local upload session for it
func (u *uploadService) NewSession(ctx context.Context, sourceKey string) (*domain.UploadSession, error) {
	totalBytes, err := u.source.Size(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	session, err := domain.NewUploadSession(sourceKey, totalBytes, u.mediaType(), u.mediaCategory())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, sourceKey)
	}

	if u.history != nil {
		if err := u.history.Create(ctx, session.Record()); err != nil {
			u.logger.Warn("failed to record upload session", "session_id", session.ID, "error", err)
		}
	}

	u.logger.Info("upload session created",
		"session_id", session.ID,
		"source", sourceKey,
		"total_bytes", totalBytes,
	)
	return session, nil
}

func (u *uploadService) chunkSize() int {
	if u.uploadCfg.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return u.uploadCfg.ChunkSize
}

func (u *uploadService) mediaType() string {
	if u.uploadCfg.MediaType == "" {
		return "video/mp4"
	}
	return u.uploadCfg.MediaType
}

func (u *uploadService) mediaCategory() string {
	if u.uploadCfg.MediaCategory == "" {
		return "tweet_video"
	}
	return u.uploadCfg.MediaCategory
}

// record saves the session state. History failures never abort an upload.
func (u *uploadService) record(ctx context.Context, session *domain.UploadSession) {
	if u.history == nil {
		return
	}
	if err := u.history.Update(ctx, session.Record()); err != nil {
		u.logger.Warn("failed to update upload history", "session_id", session.ID, "error", err)
	}
}

func (u *uploadService) fail(ctx context.Context, session *domain.UploadSession, cause error) {
	session.Status = domain.UploadSessionStatusFailed
	if u.history == nil {
		return
	}
	if err := u.history.MarkFailed(ctx, session.ID, cause.Error()); err != nil {
		u.logger.Warn("failed to update upload history", "session_id", session.ID, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
