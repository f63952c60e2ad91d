package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"media-upload/internal/adapters/repository"
	"media-upload/internal/adapters/storage"
	"media-upload/internal/adapters/xapi"
	"media-upload/internal/config"
	"media-upload/internal/core/domain"
	"media-upload/internal/core/service/upload"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const postText = "I just uploaded a video with the media upload v2 @XDevelopers API."

func TestUploadService_UploadAndPost(t *testing.T) {
	ctx := context.Background()

	t.Run("success - upload, wait for processing and post", func(t *testing.T) {
		// Arrange
		f := newFixture(defaultConfig())
		data := bytes.Repeat([]byte{1}, 10*mib)
		f.withMedia("video.mp4", data)
		post := &domain.Post{ID: "1", Text: postText}

		f.media.On("InitUpload", ctx, int64(10*mib), "video/mp4", "tweet_video").Return("999", nil).Once()
		f.media.On("AppendChunk", ctx, "999", mock.Anything, mock.Anything).Return(nil)
		f.media.On("FinalizeUpload", ctx, "999").Return(pending(5), nil).Once()
		f.media.On("UploadStatus", ctx, "999").Return(&domain.ProcessingInfo{State: domain.ProcessingStateSucceeded, ProgressPercent: 100}, nil).Once()
		f.posts.On("CreatePost", ctx, postText, []string{"999"}).Return(post, nil).Once()

		// Act
		got, err := f.service.UploadAndPost(ctx, "video.mp4", postText)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "1", got.ID)
		assert.Equal(t, []time.Duration{5 * time.Second}, f.sleeper.waits)
		indices, _ := appendCalls(f.media)
		assert.Equal(t, []int{0, 1, 2}, indices)
		f.media.AssertNumberOfCalls(t, "InitUpload", 1)
		f.media.AssertNumberOfCalls(t, "UploadStatus", 1)
		f.posts.AssertNumberOfCalls(t, "CreatePost", 1)
	})

	t.Run("success - media usable right after finalize", func(t *testing.T) {
		// Arrange
		f := newFixture(defaultConfig())
		f.withMedia("image.bin", []byte("tiny"))

		f.media.On("InitUpload", ctx, int64(4), "video/mp4", "tweet_video").Return("7", nil)
		f.media.On("AppendChunk", ctx, "7", 0, []byte("tiny")).Return(nil).Once()
		f.media.On("FinalizeUpload", ctx, "7").Return((*domain.ProcessingInfo)(nil), nil)
		f.posts.On("CreatePost", ctx, "text", []string{"7"}).Return(&domain.Post{ID: "2"}, nil)

		// Act
		got, err := f.service.UploadAndPost(ctx, "image.bin", "text")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "2", got.ID)
		assert.Empty(t, f.sleeper.waits)
		f.media.AssertNotCalled(t, "UploadStatus", mock.Anything, mock.Anything)
	})

	t.Run("error - processing failed at finalize", func(t *testing.T) {
		// Arrange
		f := newFixture(defaultConfig())
		f.withMedia("video.mp4", []byte("0123456789"))

		f.media.On("InitUpload", ctx, int64(10), "video/mp4", "tweet_video").Return("999", nil)
		f.media.On("AppendChunk", ctx, "999", 0, mock.Anything).Return(nil)
		f.media.On("FinalizeUpload", ctx, "999").Return(&domain.ProcessingInfo{
			State: domain.ProcessingStateFailed,
			Error: &domain.ProcessingError{Message: "InvalidMedia"},
		}, nil)

		// Act
		got, err := f.service.UploadAndPost(ctx, "video.mp4", postText)

		// Assert
		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrProcessingFailed)
		f.media.AssertNotCalled(t, "UploadStatus", mock.Anything, mock.Anything)
		f.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - no post after a failed step", func(t *testing.T) {
		apiErr := func(command string) error {
			return &domain.APIError{Command: command, StatusCode: 400, Body: "rejected"}
		}
		cases := []struct {
			name  string
			setup func(f *fixture)
		}{
			{
				name: "init",
				setup: func(f *fixture) {
					f.media.On("InitUpload", ctx, int64(10), "video/mp4", "tweet_video").Return("", apiErr("INIT"))
				},
			},
			{
				name: "append",
				setup: func(f *fixture) {
					f.media.On("InitUpload", ctx, int64(10), "video/mp4", "tweet_video").Return("999", nil)
					f.media.On("AppendChunk", ctx, "999", 0, mock.Anything).Return(apiErr("APPEND"))
				},
			},
			{
				name: "finalize",
				setup: func(f *fixture) {
					f.media.On("InitUpload", ctx, int64(10), "video/mp4", "tweet_video").Return("999", nil)
					f.media.On("AppendChunk", ctx, "999", 0, mock.Anything).Return(nil)
					f.media.On("FinalizeUpload", ctx, "999").Return((*domain.ProcessingInfo)(nil), apiErr("FINALIZE"))
				},
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// Arrange
				f := newFixture(defaultConfig())
				f.withMedia("video.mp4", []byte("0123456789"))
				tc.setup(f)

				// Act
				got, err := f.service.UploadAndPost(ctx, "video.mp4", postText)

				// Assert
				assert.Nil(t, got)
				var target *domain.APIError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, 400, target.StatusCode)
				f.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("error - missing source", func(t *testing.T) {
		// Arrange
		f := newFixture(defaultConfig())
		f.source.On("Size", ctx, "missing.mp4").Return(int64(0), io.ErrUnexpectedEOF)

		// Act
		_, err := f.service.UploadAndPost(ctx, "missing.mp4", postText)

		// Assert
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		f.media.AssertNotCalled(t, "InitUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUploadService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("success - every step is recorded", func(t *testing.T) {
		// Arrange
		media := xapi.NewMockMediaAPI()
		posts := xapi.NewMockPostAPI()
		source := storage.NewMockStorage()
		history := repository.NewMockUploadSessionRepository()
		service := upload.NewUploadService(media, posts, source, history, config.UploadConfig{ChunkSize: 4}, discardLogger)

		source.On("Size", ctx, "video.mp4").Return(int64(6), nil)
		source.On("Open", ctx, "video.mp4").Return(io.NopCloser(bytes.NewReader([]byte("abcdef"))), nil)
		media.On("InitUpload", ctx, int64(6), "video/mp4", "tweet_video").Return("999", nil)
		media.On("AppendChunk", ctx, "999", mock.Anything, mock.Anything).Return(nil)
		media.On("FinalizeUpload", ctx, "999").Return((*domain.ProcessingInfo)(nil), nil)
		posts.On("CreatePost", ctx, "text", []string{"999"}).Return(&domain.Post{ID: "55"}, nil)

		var statuses []domain.UploadSessionStatus
		history.On("Create", ctx, mock.AnythingOfType("domain.UploadRecord")).Return(nil).Once()
		history.On("Update", ctx, mock.AnythingOfType("domain.UploadRecord")).
			Run(func(args mock.Arguments) {
				statuses = append(statuses, args.Get(1).(domain.UploadRecord).Status)
			}).
			Return(nil)
		history.On("UpdatePostID", ctx, mock.Anything, "55").Return(nil).Once()

		// Act
		_, err := service.UploadAndPost(ctx, "video.mp4", "text")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, domain.UploadSessionStatusInitialized, statuses[0])
		assert.Equal(t, domain.UploadSessionStatusReady, statuses[len(statuses)-1])
		assert.Contains(t, statuses, domain.UploadSessionStatusAppended)
		history.AssertExpectations(t)
	})

	t.Run("success - history failures do not stop the upload", func(t *testing.T) {
		// Arrange
		media := xapi.NewMockMediaAPI()
		posts := xapi.NewMockPostAPI()
		source := storage.NewMockStorage()
		history := repository.NewMockUploadSessionRepository()
		service := upload.NewUploadService(media, posts, source, history, config.UploadConfig{}, discardLogger)

		source.On("Size", ctx, "video.mp4").Return(int64(3), nil)
		source.On("Open", ctx, "video.mp4").Return(io.NopCloser(bytes.NewReader([]byte("abc"))), nil)
		media.On("InitUpload", ctx, int64(3), "video/mp4", "tweet_video").Return("999", nil)
		media.On("AppendChunk", ctx, "999", 0, []byte("abc")).Return(nil)
		media.On("FinalizeUpload", ctx, "999").Return((*domain.ProcessingInfo)(nil), nil)
		posts.On("CreatePost", ctx, "text", []string{"999"}).Return(&domain.Post{ID: "55"}, nil)

		dbErr := errors.New("connection refused")
		history.On("Create", ctx, mock.Anything).Return(dbErr)
		history.On("Update", ctx, mock.Anything).Return(dbErr)
		history.On("UpdatePostID", ctx, mock.Anything, "55").Return(dbErr)

		// Act
		post, err := service.UploadAndPost(ctx, "video.mp4", "text")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "55", post.ID)
	})

	t.Run("error - failure is recorded with its reason", func(t *testing.T) {
		// Arrange
		media := xapi.NewMockMediaAPI()
		posts := xapi.NewMockPostAPI()
		source := storage.NewMockStorage()
		history := repository.NewMockUploadSessionRepository()
		service := upload.NewUploadService(media, posts, source, history, config.UploadConfig{}, discardLogger)

		source.On("Size", ctx, "video.mp4").Return(int64(3), nil)
		apiErr := &domain.APIError{Command: "INIT", StatusCode: 400, Body: "bad media_type"}
		media.On("InitUpload", ctx, int64(3), "video/mp4", "tweet_video").Return("", apiErr)
		history.On("Create", ctx, mock.Anything).Return(nil)
		history.On("MarkFailed", ctx, mock.Anything, apiErr.Error()).Return(nil).Once()

		// Act
		_, err := service.UploadAndPost(ctx, "video.mp4", "text")

		// Assert
		assert.ErrorIs(t, err, domain.ErrRequestFailed)
		history.AssertExpectations(t)
		posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	})
}
