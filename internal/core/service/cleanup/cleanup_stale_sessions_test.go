package cleanup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"media-upload/internal/adapters/repository"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/service/cleanup"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestCleanupService_CleanupStaleSessions_NoStaleSessions(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockUploadSessionRepository()
	service := cleanup.NewCleanupService(mockRepo, time.Hour, logger)

	now := time.Now()
	mockRepo.On("FindAllStale", ctx, now.Add(-time.Hour)).Return([]domain.UploadRecord{}, nil)

	// Act
	err := service.CleanupStaleSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "UpdateStatus", 0)
}

func TestCleanupService_CleanupStaleSessions_MarksAbandoned(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockUploadSessionRepository()
	service := cleanup.NewCleanupService(mockRepo, 2*time.Hour, logger)

	now := time.Now()
	first := domain.UploadRecord{ID: uuid.New(), Status: domain.UploadSessionStatusAppended, MediaID: "999"}
	second := domain.UploadRecord{ID: uuid.New(), Status: domain.UploadSessionStatusCreated}

	mockRepo.On("FindAllStale", ctx, now.Add(-2*time.Hour)).Return([]domain.UploadRecord{first, second}, nil)
	mockRepo.On("UpdateStatus", ctx, first.ID, domain.UploadSessionStatusAbandoned).Return(nil).Once()
	mockRepo.On("UpdateStatus", ctx, second.ID, domain.UploadSessionStatusAbandoned).Return(nil).Once()

	// Act
	err := service.CleanupStaleSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCleanupService_CleanupStaleSessions_ContinuesAfterUpdateError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockUploadSessionRepository()
	service := cleanup.NewCleanupService(mockRepo, time.Hour, logger)

	now := time.Now()
	first := domain.UploadRecord{ID: uuid.New(), Status: domain.UploadSessionStatusFinalized}
	second := domain.UploadRecord{ID: uuid.New(), Status: domain.UploadSessionStatusInitialized}

	mockRepo.On("FindAllStale", ctx, now.Add(-time.Hour)).Return([]domain.UploadRecord{first, second}, nil)
	mockRepo.On("UpdateStatus", ctx, first.ID, domain.UploadSessionStatusAbandoned).Return(domain.ErrSessionNotFound)
	mockRepo.On("UpdateStatus", ctx, second.ID, domain.UploadSessionStatusAbandoned).Return(nil)

	// Act
	err := service.CleanupStaleSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestCleanupService_CleanupStaleSessions_FindError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockUploadSessionRepository()
	service := cleanup.NewCleanupService(mockRepo, 0, logger)

	now := time.Now()
	dbErr := errors.New("connection refused")
	mockRepo.On("FindAllStale", ctx, now.Add(-24*time.Hour)).Return([]domain.UploadRecord(nil), dbErr)

	// Act
	err := service.CleanupStaleSessions(ctx, now)

	// Assert
	assert.ErrorIs(t, err, dbErr)
	mockRepo.AssertNumberOfCalls(t, "UpdateStatus", 0)
}
