package port

import (
	"context"
	"media-upload/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// UploadSessionRepository is an interface to interact with the upload history
type UploadSessionRepository interface {
	Create(ctx context.Context, record domain.UploadRecord) error
	Update(ctx context.Context, record domain.UploadRecord) error
	UpdatePostID(ctx context.Context, id uuid.UUID, postID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error)
	FindAllStale(ctx context.Context, before time.Time) ([]domain.UploadRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadSessionStatus) error
}
