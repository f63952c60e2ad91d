package upload

import (
	"context"
	"fmt"
	"media-upload/internal/core/domain"
)

// PublishPost publishes a post with the session media attached
func (u *uploadService) PublishPost(ctx context.Context, session *domain.UploadSession, text string) (*domain.Post, error) {
	if !session.Ready() {
		return nil, domain.ErrMediaNotReady
	}

	post, err := u.posts.CreatePost(ctx, text, []string{session.MediaID})
	if err != nil {
		u.fail(ctx, session, err)
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}

	session.Status = domain.UploadSessionStatusPublished
	if u.history != nil {
		if err := u.history.UpdatePostID(ctx, session.ID, post.ID); err != nil {
			u.logger.Warn("failed to update upload history", "session_id", session.ID, "error", err)
		}
	}

	u.logger.Info("post published", "media_id", session.MediaID, "post_id", post.ID, "response", string(post.Raw))
	return post, nil
}
