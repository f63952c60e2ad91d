package upload_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"media-upload/internal/adapters/storage"
	"media-upload/internal/adapters/xapi"
	"media-upload/internal/config"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/port"
	"media-upload/internal/core/service/upload"
	"time"

	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

type sleepRecorder struct {
	waits []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

type fixture struct {
	media   *xapi.MockMediaAPI
	posts   *xapi.MockPostAPI
	source  *storage.MockStorage
	sleeper *sleepRecorder
	service port.UploadService
}

func newFixture(cfg config.UploadConfig) *fixture {
	f := &fixture{
		media:   xapi.NewMockMediaAPI(),
		posts:   xapi.NewMockPostAPI(),
		source:  storage.NewMockStorage(),
		sleeper: &sleepRecorder{},
	}
	f.service = upload.NewUploadService(f.media, f.posts, f.source, nil, cfg, discardLogger, upload.WithSleep(f.sleeper.sleep))
	return f
}

func defaultConfig() config.UploadConfig {
	return config.UploadConfig{
		ChunkSize:     4 * 1024 * 1024,
		MediaType:     "video/mp4",
		MediaCategory: "tweet_video",
	}
}

// withMedia makes the source serve data under key
func (f *fixture) withMedia(key string, data []byte) *trackingReader {
	reader := &trackingReader{Reader: bytes.NewReader(data)}
	f.source.On("Size", mock.Anything, key).Return(int64(len(data)), nil)
	f.source.On("Open", mock.Anything, key).Return(reader, nil)
	return reader
}

func initializedSession(totalBytes int64, mediaID string) *domain.UploadSession {
	session, err := domain.NewUploadSession("video.mp4", totalBytes, "video/mp4", "tweet_video")
	if err != nil {
		panic(err)
	}
	if err := session.AssignMediaID(mediaID); err != nil {
		panic(err)
	}
	return session
}

// appendCalls returns segment index and chunk size of every AppendChunk call, in order
func appendCalls(m *xapi.MockMediaAPI) ([]int, []int) {
	var indices, sizes []int
	for _, call := range m.Calls {
		if call.Method != "AppendChunk" {
			continue
		}
		indices = append(indices, call.Arguments.Int(2))
		sizes = append(sizes, len(call.Arguments.Get(3).([]byte)))
	}
	return indices, sizes
}

func pending(after int) *domain.ProcessingInfo {
	return &domain.ProcessingInfo{State: domain.ProcessingStatePending, CheckAfterSecs: after}
}
