package upload

import (
	"context"
	"media-upload/internal/core/domain"
)

// UploadAndPost runs the whole upload for sourceKey and publishes text with it.
// The first failing step stops the flow, nothing is posted after a failure.
func (u *uploadService) UploadAndPost(ctx context.Context, sourceKey string, text string) (*domain.Post, error) {
	session, err := u.NewSession(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	if _, err := u.Init(ctx, session); err != nil {
		return nil, err
	}
	if err := u.AppendChunks(ctx, session); err != nil {
		return nil, err
	}
	if _, err := u.Finalize(ctx, session); err != nil {
		return nil, err
	}
	if err := u.PollStatus(ctx, session); err != nil {
		return nil, err
	}

	return u.PublishPost(ctx, session, text)
}
