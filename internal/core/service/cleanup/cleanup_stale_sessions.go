package cleanup

import (
	"context"
	"media-upload/internal/core/domain"
	"time"
)

// CleanupStaleSessions marks every upload left in a non terminal status for longer than the ttl as abandoned
func (c *cleanupService) CleanupStaleSessions(ctx context.Context, now time.Time) error {
	records, err := c.history.FindAllStale(ctx, now.Add(-c.ttl))
	if err != nil {
		return err
	}

	abandoned := 0
	for _, record := range records {
		if err := c.history.UpdateStatus(ctx, record.ID, domain.UploadSessionStatusAbandoned); err != nil {
			c.logger.Error("failed to abandon stale upload", "session_id", record.ID, "error", err)
			continue
		}
		abandoned++
		c.logger.Info("stale upload abandoned",
			"session_id", record.ID,
			"source", record.SourceKey,
			"status", record.Status,
			"media_id", record.MediaID,
		)
	}
	c.logger.Info("stale upload cleanup completed", "found", len(records), "abandoned", abandoned)
	return nil
}
