package port

import (
	"context"
	"media-upload/internal/core/domain"
)

// MediaAPI is an interface to define the chunked media upload endpoint
type MediaAPI interface {
	InitUpload(ctx context.Context, totalBytes int64, mediaType string, mediaCategory string) (string, error)
	AppendChunk(ctx context.Context, mediaID string, segmentIndex int, chunk []byte) error
	FinalizeUpload(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error)
	UploadStatus(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error)
}

// PostAPI is an interface to define post publishing
type PostAPI interface {
	CreatePost(ctx context.Context, text string, mediaIDs []string) (*domain.Post, error)
}
