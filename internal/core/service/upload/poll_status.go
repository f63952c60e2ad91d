package upload

import (
	"context"
	"fmt"
	"media-upload/internal/core/domain"
	"time"
)

const defaultCheckAfter = time.Second

// PollStatus waits until processing reaches a terminal state.
// The wait between polls is the server's check_after_secs hint.
func (u *uploadService) PollStatus(ctx context.Context, session *domain.UploadSession) error {
	if session.MediaID == "" {
		return domain.ErrNotInitialized
	}

	var waited time.Duration
	for {
		info := session.Processing
		if info == nil {
			break
		}

		u.logger.Info("media processing status",
			"media_id", session.MediaID,
			"state", info.State,
			"progress_percent", info.ProgressPercent,
		)

		switch info.State {
		case domain.ProcessingStateSucceeded:
			session.Status = domain.UploadSessionStatusReady
			u.record(ctx, session)
			return nil
		case domain.ProcessingStateFailed:
			err := processingError(info)
			u.fail(ctx, session, err)
			return err
		}

		delay := time.Duration(info.CheckAfterSecs) * time.Second
		if delay <= 0 {
			delay = defaultCheckAfter
		}
		if limit := u.uploadCfg.MaxPollDuration; limit > 0 && waited+delay > limit {
			err := fmt.Errorf("%w after %s", domain.ErrPollTimeout, waited)
			u.fail(ctx, session, err)
			return err
		}

		u.logger.Info("checking status later", "media_id", session.MediaID, "after", delay)
		if err := u.sleep(ctx, delay); err != nil {
			u.fail(ctx, session, err)
			return err
		}
		waited += delay

		u.logger.Info("STATUS", "media_id", session.MediaID)
		next, err := u.media.UploadStatus(ctx, session.MediaID)
		if err != nil {
			u.fail(ctx, session, err)
			return fmt.Errorf("failed to check upload status: %w", err)
		}
		session.Processing = next
		u.record(ctx, session)
	}

	session.Status = domain.UploadSessionStatusReady
	u.record(ctx, session)
	return nil
}

func processingError(info *domain.ProcessingInfo) error {
	if info.Error != nil && info.Error.Message != "" {
		return fmt.Errorf("%w: %s", domain.ErrProcessingFailed, info.Error.Message)
	}
	return domain.ErrProcessingFailed
}
