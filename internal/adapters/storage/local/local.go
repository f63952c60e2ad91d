package local

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Source reads media from the local filesystem
type Source struct{}

// NewSource returns Source
func NewSource() *Source {
	return &Source{}
}

// Size returns the size of the file at path
func (s *Source) Size(_ context.Context, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat media file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("media path %s is a directory", path)
	}
	return info.Size(), nil
}

// Open opens the file at path for sequential reading
func (s *Source) Open(_ context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	return file, nil
}
