package xapi

import (
	"context"
	"media-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockMediaAPI struct {
	mock.Mock
}

func NewMockMediaAPI() *MockMediaAPI {
	return &MockMediaAPI{}
}

func (m *MockMediaAPI) InitUpload(ctx context.Context, totalBytes int64, mediaType string, mediaCategory string) (string, error) {
	args := m.Called(ctx, totalBytes, mediaType, mediaCategory)
	return args.String(0), args.Error(1)
}

// AppendChunk records a copy of chunk, callers reuse their read buffer
func (m *MockMediaAPI) AppendChunk(ctx context.Context, mediaID string, segmentIndex int, chunk []byte) error {
	args := m.Called(ctx, mediaID, segmentIndex, append([]byte(nil), chunk...))
	return args.Error(0)
}

func (m *MockMediaAPI) FinalizeUpload(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error) {
	args := m.Called(ctx, mediaID)
	return args.Get(0).(*domain.ProcessingInfo), args.Error(1)
}

func (m *MockMediaAPI) UploadStatus(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error) {
	args := m.Called(ctx, mediaID)
	return args.Get(0).(*domain.ProcessingInfo), args.Error(1)
}

type MockPostAPI struct {
	mock.Mock
}

func NewMockPostAPI() *MockPostAPI {
	return &MockPostAPI{}
}

func (m *MockPostAPI) CreatePost(ctx context.Context, text string, mediaIDs []string) (*domain.Post, error) {
	args := m.Called(ctx, text, mediaIDs)
	return args.Get(0).(*domain.Post), args.Error(1)
}
