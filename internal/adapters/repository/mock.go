package repository

import (
	"context"
	"media-upload/internal/core/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadSessionRepository struct {
	mock.Mock
}

func NewMockUploadSessionRepository() *MockUploadSessionRepository {
	return &MockUploadSessionRepository{}
}

func (m *MockUploadSessionRepository) Create(ctx context.Context, record domain.UploadRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) Update(ctx context.Context, record domain.UploadRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) UpdatePostID(ctx context.Context, id uuid.UUID, postID string) error {
	args := m.Called(ctx, id, postID)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.UploadRecord), args.Error(1)
}

func (m *MockUploadSessionRepository) FindAllStale(ctx context.Context, before time.Time) ([]domain.UploadRecord, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.UploadRecord), args.Error(1)
}

func (m *MockUploadSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadSessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
