package upload

import (
	"context"
	"media-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

// NewMockUploadService creates a new MockUploadService
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) NewSession(ctx context.Context, sourceKey string) (*domain.UploadSession, error) {
	args := m.Called(ctx, sourceKey)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadService) Init(ctx context.Context, session *domain.UploadSession) (string, error) {
	args := m.Called(ctx, session)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) AppendChunks(ctx context.Context, session *domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUploadService) Finalize(ctx context.Context, session *domain.UploadSession) (*domain.ProcessingInfo, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(*domain.ProcessingInfo), args.Error(1)
}

func (m *MockUploadService) PollStatus(ctx context.Context, session *domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUploadService) PublishPost(ctx context.Context, session *domain.UploadSession, text string) (*domain.Post, error) {
	args := m.Called(ctx, session, text)
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockUploadService) UploadAndPost(ctx context.Context, sourceKey string, text string) (*domain.Post, error) {
	args := m.Called(ctx, sourceKey, text)
	return args.Get(0).(*domain.Post), args.Error(1)
}
