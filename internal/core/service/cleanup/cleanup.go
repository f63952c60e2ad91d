package cleanup

import (
	"log/slog"
	"media-upload/internal/core/port"
	"time"
)

const defaultSessionTTL = 24 * time.Hour

type cleanupService struct {
	history port.UploadSessionRepository
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCleanupService creates a new cleanup service. Uploads idle for longer than ttl are abandoned.
func NewCleanupService(history port.UploadSessionRepository, ttl time.Duration, logger *slog.Logger) port.CleanupService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &cleanupService{
		history: history,
		ttl:     ttl,
		logger:  logger,
	}
}
