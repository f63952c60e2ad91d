package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Size(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) ContentType(ctx context.Context, key string) (string, map[string]string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(map[string]string), args.Error(2)
}
