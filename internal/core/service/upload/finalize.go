package upload

import (
	"context"
	"fmt"
	"media-upload/internal/core/domain"
)

// Finalize completes the upload. A nil descriptor means the media is usable right away.
func (u *uploadService) Finalize(ctx context.Context, session *domain.UploadSession) (*domain.ProcessingInfo, error) {
	if session.MediaID == "" {
		return nil, domain.ErrNotInitialized
	}
	if !session.Complete() {
		return nil, fmt.Errorf("%w: %d of %d bytes sent", domain.ErrIncompleteUpload, session.BytesSent, session.TotalBytes)
	}

	u.logger.Info("FINALIZE", "media_id", session.MediaID)

	info, err := u.media.FinalizeUpload(ctx, session.MediaID)
	if err != nil {
		u.fail(ctx, session, err)
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	session.Processing = info
	session.Status = domain.UploadSessionStatusFinalized
	if info == nil {
		session.Status = domain.UploadSessionStatusReady
	}
	u.record(ctx, session)

	return info, nil
}
