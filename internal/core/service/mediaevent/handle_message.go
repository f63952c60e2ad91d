package mediaevent

import (
	"context"
	"encoding/json"
	"fmt"
	"media-upload/internal/core/domain"
	"mime"
	"net/url"
	"slices"
	"strings"
)

// HandleMessage uploads the object of a MinIO ObjectCreated notification and publishes a post with it.
// Other events and objects that are not an allowed video type are acknowledged and skipped.
func (m *mediaEventService) HandleMessage(ctx context.Context, data []byte) error {
	notification, err := m.decode(data)
	if err != nil {
		return err
	}

	m.logger.Info("handling event", "eventtype", notification.EventName, "key", notification.ObjectKey, "size", notification.ObjectSize)

	if notification.EventType != domain.EventTypeObjectCreated {
		m.logger.Info("ignoring event", "eventtype", notification.EventName, "key", notification.ObjectKey)
		return nil
	}

	contentType, metadata, err := m.inspector.ContentType(ctx, notification.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", notification.ObjectKey, err)
	}
	if contentType == "" {
		contentType = notification.ContentType
	}

	if !m.allowed(contentType) {
		m.logger.Warn("skipping object",
			"key", notification.ObjectKey,
			"content_type", contentType,
			"error", domain.ErrUnsupportedMedia,
		)
		return nil
	}

	text := m.postText(metadata)
	post, err := m.uploader.UploadAndPost(ctx, notification.ObjectKey, text)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", notification.ObjectKey, err)
	}

	m.logger.Info("object published", "key", notification.ObjectKey, "post_id", post.ID)
	return nil
}

func (m *mediaEventService) decode(data []byte) (*domain.UploadNotification, error) {
	var event domain.MinIOEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("could not unmarshal minio event: %w", err)
	}
	if len(event.Records) == 0 {
		return nil, fmt.Errorf("no records in minio event")
	}

	record := event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid object key %q: %w", record.S3.Object.Key, err)
	}

	return &domain.UploadNotification{
		EventName:    record.EventName,
		EventType:    domain.EventTypeFromName(record.EventName),
		StorageName:  record.S3.Bucket.Name,
		ObjectKey:    key,
		ObjectSize:   record.S3.Object.Size,
		ContentType:  record.S3.Object.ContentType,
		UserMetadata: record.S3.Object.UserMetadata,
	}, nil
}

func (m *mediaEventService) allowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(m.config.AllowedMediaTypes, mediaType)
}

func (m *mediaEventService) postText(metadata map[string]string) string {
	for key, value := range metadata {
		name := strings.TrimPrefix(strings.ToLower(key), "x-amz-meta-")
		if name == strings.ToLower(PostTextMetadataKey) && value != "" {
			return value
		}
	}
	return m.config.DefaultPostText
}
