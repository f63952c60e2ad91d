package port

import (
	"context"
	"media-upload/internal/core/domain"
)

// UploadService drives the INIT, APPEND, FINALIZE and STATUS protocol and publishes the post
type UploadService interface {
	NewSession(ctx context.Context, sourceKey string) (*domain.UploadSession, error)
	Init(ctx context.Context, session *domain.UploadSession) (string, error)
	AppendChunks(ctx context.Context, session *domain.UploadSession) error
	Finalize(ctx context.Context, session *domain.UploadSession) (*domain.ProcessingInfo, error)
	PollStatus(ctx context.Context, session *domain.UploadSession) error
	PublishPost(ctx context.Context, session *domain.UploadSession, text string) (*domain.Post, error)
	UploadAndPost(ctx context.Context, sourceKey string, text string) (*domain.Post, error)
}
