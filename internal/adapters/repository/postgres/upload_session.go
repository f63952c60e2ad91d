package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type sqlUploadSessionRepository struct {
	db SQLQuerier
}

// NewSQLUploadSessionRepository Creates a new sqlUploadSessionRepository
func NewSQLUploadSessionRepository(db SQLQuerier) port.UploadSessionRepository {
	return &sqlUploadSessionRepository{db: db}
}

// Create creates an upload history row
func (s *sqlUploadSessionRepository) Create(ctx context.Context, record domain.UploadRecord) error {
	query := `
		INSERT INTO upload_session (
			id, source_key, total_bytes, media_id, segments_sent, bytes_sent, status, processing_state, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.SourceKey,
		record.TotalBytes,
		nullString(record.MediaID),
		record.SegmentsSent,
		record.BytesSent,
		record.Status,
		nullString(record.ProcessingState),
		createdAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("upload session %s : %w", record.ID, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// Update overwrites the progress of an upload
func (s *sqlUploadSessionRepository) Update(ctx context.Context, record domain.UploadRecord) error {
	query := `
		UPDATE upload_session
		SET media_id = $1, segments_sent = $2, bytes_sent = $3, status = $4, processing_state = $5, updated_at = now()
		WHERE id = $6`

	return s.exec(ctx, query,
		nullString(record.MediaID),
		record.SegmentsSent,
		record.BytesSent,
		record.Status,
		nullString(record.ProcessingState),
		record.ID,
	)
}

// UpdatePostID stores the published post and marks the upload published
func (s *sqlUploadSessionRepository) UpdatePostID(ctx context.Context, id uuid.UUID, postID string) error {
	query := `UPDATE upload_session SET post_id = $1, status = $2, updated_at = now() WHERE id = $3`
	return s.exec(ctx, query, postID, domain.UploadSessionStatusPublished, id)
}

// MarkFailed marks the upload failed with reason
func (s *sqlUploadSessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE upload_session SET status = $1, error_message = $2, updated_at = now() WHERE id = $3`
	return s.exec(ctx, query, domain.UploadSessionStatusFailed, reason, id)
}

// UpdateStatus updates status
func (s *sqlUploadSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadSessionStatus) error {
	query := `UPDATE upload_session SET status = $1, updated_at = now() WHERE id = $2`
	return s.exec(ctx, query, status, id)
}

func (s *sqlUploadSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	query := `
		SELECT ` + uploadSessionColumns + `
		FROM upload_session
		WHERE id = $1`

	row, err := scanUploadSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

// FindAllStale returns uploads not in a terminal status and not touched since before
func (s *sqlUploadSessionRepository) FindAllStale(ctx context.Context, before time.Time) ([]domain.UploadRecord, error) {
	query := `
		SELECT ` + uploadSessionColumns + `
		FROM upload_session
		WHERE status NOT IN ($1, $2, $3) AND updated_at < $4
		ORDER BY updated_at`

	rows, err := s.db.QueryContext(ctx, query,
		domain.UploadSessionStatusPublished,
		domain.UploadSessionStatusFailed,
		domain.UploadSessionStatusAbandoned,
		before,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.UploadRecord
	for rows.Next() {
		row, err := scanUploadSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *sqlUploadSessionRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

const uploadSessionColumns = `id, source_key, total_bytes, media_id, segments_sent, bytes_sent, status,
		processing_state, post_id, error_message, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUploadSession(sc scanner) (*dbUploadSession, error) {
	var row dbUploadSession
	err := sc.Scan(
		&row.ID,
		&row.SourceKey,
		&row.TotalBytes,
		&row.MediaID,
		&row.SegmentsSent,
		&row.BytesSent,
		&row.Status,
		&row.ProcessingState,
		&row.PostID,
		&row.ErrorMessage,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type dbUploadSession struct {
	ID              uuid.UUID      `db:"id"`
	SourceKey       string         `db:"source_key"`
	TotalBytes      int64          `db:"total_bytes"`
	MediaID         sql.NullString `db:"media_id"`
	SegmentsSent    int            `db:"segments_sent"`
	BytesSent       int64          `db:"bytes_sent"`
	Status          string         `db:"status"`
	ProcessingState sql.NullString `db:"processing_state"`
	PostID          sql.NullString `db:"post_id"`
	ErrorMessage    sql.NullString `db:"error_message"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (s *dbUploadSession) ToDomain() *domain.UploadRecord {
	return &domain.UploadRecord{
		ID:              s.ID,
		SourceKey:       s.SourceKey,
		TotalBytes:      s.TotalBytes,
		MediaID:         s.MediaID.String,
		SegmentsSent:    s.SegmentsSent,
		BytesSent:       s.BytesSent,
		Status:          domain.UploadSessionStatus(s.Status),
		ProcessingState: s.ProcessingState.String,
		PostID:          s.PostID.String,
		ErrorMessage:    s.ErrorMessage.String,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
