package port

import (
	"context"
	"io"
)

// MediaSource is an interface to read media to upload (local disk, object storage, ...)
type MediaSource interface {
	Size(ctx context.Context, key string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectInspector exposes object metadata a MediaSource may know about
type ObjectInspector interface {
	ContentType(ctx context.Context, key string) (string, map[string]string, error)
}
