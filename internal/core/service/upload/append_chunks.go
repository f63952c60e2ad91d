package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"media-upload/internal/core/domain"
)

// AppendChunks streams the media in fixed-size segments, in order, starting at segment 0.
// The first rejected segment aborts the upload; it is not retried here.
func (u *uploadService) AppendChunks(ctx context.Context, session *domain.UploadSession) error {
	if session.MediaID == "" {
		return domain.ErrNotInitialized
	}
	if session.SegmentIndex != 0 || session.BytesSent != 0 {
		return domain.ErrAlreadyAppended
	}

	reader, err := u.source.Open(ctx, session.SourceKey)
	if err != nil {
		u.fail(ctx, session, err)
		return fmt.Errorf("failed to open media: %w", err)
	}
	defer reader.Close()

	buf := make([]byte, u.chunkSize())
	for !session.Complete() {
		want := len(buf)
		if remaining := session.TotalBytes - session.BytesSent; remaining < int64(want) {
			want = int(remaining)
		}

		n, err := io.ReadFull(reader, buf[:want])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = fmt.Errorf("%w: read %d of %d bytes", domain.ErrShortRead, session.BytesSent+int64(n), session.TotalBytes)
			} else {
				err = fmt.Errorf("failed to read media: %w", err)
			}
			u.fail(ctx, session, err)
			return err
		}

		u.logger.Debug("APPEND", "media_id", session.MediaID, "segment_index", session.SegmentIndex, "bytes", n)

		if err := u.media.AppendChunk(ctx, session.MediaID, session.SegmentIndex, buf[:n]); err != nil {
			u.fail(ctx, session, err)
			return fmt.Errorf("failed to append segment %d: %w", session.SegmentIndex, err)
		}
		session.AdvanceSegment(n)
		u.record(ctx, session)

		u.logger.Info("segment uploaded",
			"media_id", session.MediaID,
			"segments", session.SegmentIndex,
			"bytes_sent", session.BytesSent,
			"total_bytes", session.TotalBytes,
		)
	}

	session.Status = domain.UploadSessionStatusAppended
	u.record(ctx, session)
	u.logger.Info("upload chunks complete", "media_id", session.MediaID, "segments", session.SegmentIndex)
	return nil
}
