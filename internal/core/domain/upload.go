package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadSessionStatus represents the local lifecycle of an upload session
type UploadSessionStatus string

const (
	UploadSessionStatusCreated     UploadSessionStatus = "created"
	UploadSessionStatusInitialized UploadSessionStatus = "initialized"
	UploadSessionStatusAppended    UploadSessionStatus = "appended"
	UploadSessionStatusFinalized   UploadSessionStatus = "finalized"
	UploadSessionStatusReady       UploadSessionStatus = "ready"
	UploadSessionStatusPublished   UploadSessionStatus = "published"
	UploadSessionStatusFailed      UploadSessionStatus = "failed"
	UploadSessionStatusAbandoned   UploadSessionStatus = "abandoned"
)

// Terminal reports whether no further transition is expected
func (s UploadSessionStatus) Terminal() bool {
	switch s {
	case UploadSessionStatusPublished, UploadSessionStatusFailed, UploadSessionStatusAbandoned:
		return true
	default:
		return false
	}
}

// ProcessingState is the server side processing state of uploaded media
type ProcessingState string

const (
	ProcessingStatePending    ProcessingState = "pending"
	ProcessingStateInProgress ProcessingState = "in_progress"
	ProcessingStateSucceeded  ProcessingState = "succeeded"
	ProcessingStateFailed     ProcessingState = "failed"
)

// ProcessingError is the error reported by the media service when processing fails
type ProcessingError struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ProcessingInfo is the processing descriptor returned by FINALIZE and STATUS
type ProcessingInfo struct {
	State           ProcessingState  `json:"state"`
	CheckAfterSecs  int              `json:"check_after_secs"`
	ProgressPercent int              `json:"progress_percent"`
	Error           *ProcessingError `json:"error,omitempty"`
}

// UploadSession represents one chunked media upload
type UploadSession struct {
	ID            uuid.UUID
	SourceKey     string
	TotalBytes    int64
	MediaType     string
	MediaCategory string
	MediaID       string
	SegmentIndex  int
	BytesSent     int64
	Processing    *ProcessingInfo
	Status        UploadSessionStatus
	CreatedAt     time.Time
}

// NewUploadSession creates a session for sourceKey of totalBytes
func NewUploadSession(sourceKey string, totalBytes int64, mediaType, mediaCategory string) (*UploadSession, error) {
	if totalBytes <= 0 {
		return nil, ErrEmptyMedia
	}
	return &UploadSession{
		ID:            uuid.New(),
		SourceKey:     sourceKey,
		TotalBytes:    totalBytes,
		MediaType:     mediaType,
		MediaCategory: mediaCategory,
		Status:        UploadSessionStatusCreated,
		CreatedAt:     time.Now(),
	}, nil
}

// AssignMediaID stores the server-assigned media id. It can only be set once.
func (s *UploadSession) AssignMediaID(mediaID string) error {
	if s.MediaID != "" {
		return ErrMediaIDAlreadyAssigned
	}
	if mediaID == "" {
		return ErrInvalidResponse
	}
	s.MediaID = mediaID
	s.Status = UploadSessionStatusInitialized
	return nil
}

// AdvanceSegment accounts for one accepted chunk of n bytes
func (s *UploadSession) AdvanceSegment(n int) {
	s.SegmentIndex++
	s.BytesSent += int64(n)
}

// Complete reports whether every byte has been accepted
func (s *UploadSession) Complete() bool {
	return s.BytesSent >= s.TotalBytes
}

// Ready reports whether the media can be attached to a post
func (s *UploadSession) Ready() bool {
	if s.MediaID == "" {
		return false
	}
	return s.Processing == nil || s.Processing.State == ProcessingStateSucceeded
}

// UploadRecord is the persisted history of an upload session
type UploadRecord struct {
	ID              uuid.UUID
	SourceKey       string
	TotalBytes      int64
	MediaID         string
	SegmentsSent    int
	BytesSent       int64
	Status          UploadSessionStatus
	ProcessingState string
	PostID          string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Record snapshots the session for the upload history
func (s *UploadSession) Record() UploadRecord {
	record := UploadRecord{
		ID:           s.ID,
		SourceKey:    s.SourceKey,
		TotalBytes:   s.TotalBytes,
		MediaID:      s.MediaID,
		SegmentsSent: s.SegmentIndex,
		BytesSent:    s.BytesSent,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
	if s.Processing != nil {
		record.ProcessingState = string(s.Processing.State)
	}
	return record
}
