package port

import (
	"context"
	"time"
)

// CleanupService is service that handles cleanup of the upload history
type CleanupService interface {
	CleanupStaleSessions(ctx context.Context, now time.Time) error
}
