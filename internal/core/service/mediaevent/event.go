package mediaevent

import (
	"log/slog"
	"media-upload/internal/config"
	"media-upload/internal/core/port"
)

// PostTextMetadataKey is the object user metadata holding the text to publish
const PostTextMetadataKey = "Post-Text"

type mediaEventService struct {
	inspector port.ObjectInspector
	uploader  port.UploadService
	config    config.WorkerConfig
	logger    *slog.Logger
}

// NewMediaEventService creates a handler uploading every video created in the bucket
func NewMediaEventService(inspector port.ObjectInspector, uploader port.UploadService, cfg config.WorkerConfig, logger *slog.Logger) port.MessageService {
	return &mediaEventService{
		inspector: inspector,
		uploader:  uploader,
		config:    cfg,
		logger:    logger,
	}
}
