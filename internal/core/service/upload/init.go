package upload

import (
	"context"
	"fmt"
	"media-upload/internal/core/domain"
)

// Init declares the upload and stores the server-assigned media id on the session
func (u *uploadService) Init(ctx context.Context, session *domain.UploadSession) (string, error) {
	if session.MediaID != "" {
		return "", domain.ErrAlreadyInitialized
	}

	u.logger.Info("INIT",
		"session_id", session.ID,
		"media_type", session.MediaType,
		"total_bytes", session.TotalBytes,
	)

	mediaID, err := u.media.InitUpload(ctx, session.TotalBytes, session.MediaType, session.MediaCategory)
	if err != nil {
		u.fail(ctx, session, err)
		return "", fmt.Errorf("failed to init upload: %w", err)
	}

	if err := session.AssignMediaID(mediaID); err != nil {
		u.fail(ctx, session, err)
		return "", fmt.Errorf("failed to init upload: %w", err)
	}
	u.record(ctx, session)

	u.logger.Info("upload initialized", "session_id", session.ID, "media_id", mediaID)
	return mediaID, nil
}
