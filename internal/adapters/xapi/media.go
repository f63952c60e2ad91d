package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"media-upload/internal/core/domain"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

const (
	commandInit     = "INIT"
	commandAppend   = "APPEND"
	commandFinalize = "FINALIZE"
	commandStatus   = "STATUS"
)

type mediaResponse struct {
	Data struct {
		ID             string                 `json:"id"`
		MediaKey       string                 `json:"media_key"`
		ProcessingInfo *domain.ProcessingInfo `json:"processing_info"`
	} `json:"data"`
}

// InitUpload declares the upload and returns the server-assigned media id
func (c *Client) InitUpload(ctx context.Context, totalBytes int64, mediaType string, mediaCategory string) (string, error) {
	params := url.Values{}
	params.Set("command", commandInit)
	params.Set("media_type", mediaType)
	params.Set("total_bytes", strconv.FormatInt(totalBytes, 10))
	params.Set("media_category", mediaCategory)

	body, err := c.do(ctx, commandInit, c.commandRequest(ctx, http.MethodPost, params))
	if err != nil {
		return "", err
	}

	resp, err := decodeMediaResponse(body)
	if err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("%w: INIT response has no media id", domain.ErrInvalidResponse)
	}
	return resp.Data.ID, nil
}

// AppendChunk uploads one segment as a multipart form
func (c *Client) AppendChunk(ctx context.Context, mediaID string, segmentIndex int, chunk []byte) error {
	build := func() (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		fields := []struct{ name, value string }{
			{"command", commandAppend},
			{"media_id", mediaID},
			{"segment_index", strconv.Itoa(segmentIndex)},
		}
		for _, field := range fields {
			if err := writer.WriteField(field.name, field.value); err != nil {
				return nil, fmt.Errorf("failed to write %s field: %w", field.name, err)
			}
		}

		part, err := writer.CreateFormFile("media", "chunk")
		if err != nil {
			return nil, fmt.Errorf("failed to create media part: %w", err)
		}
		if _, err := part.Write(chunk); err != nil {
			return nil, fmt.Errorf("failed to write media part: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to close multipart body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mediaURL(), &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	_, err := c.do(ctx, commandAppend, build)
	return err
}

// FinalizeUpload completes the upload. A nil descriptor means no processing is needed.
func (c *Client) FinalizeUpload(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error) {
	params := url.Values{}
	params.Set("command", commandFinalize)
	params.Set("media_id", mediaID)

	body, err := c.do(ctx, commandFinalize, c.commandRequest(ctx, http.MethodPost, params))
	if err != nil {
		return nil, err
	}

	resp, err := decodeMediaResponse(body)
	if err != nil {
		return nil, err
	}
	return resp.Data.ProcessingInfo, nil
}

// UploadStatus fetches the current processing descriptor
func (c *Client) UploadStatus(ctx context.Context, mediaID string) (*domain.ProcessingInfo, error) {
	params := url.Values{}
	params.Set("command", commandStatus)
	params.Set("media_id", mediaID)

	body, err := c.do(ctx, commandStatus, c.commandRequest(ctx, http.MethodGet, params))
	if err != nil {
		return nil, err
	}

	resp, err := decodeMediaResponse(body)
	if err != nil {
		return nil, err
	}
	return resp.Data.ProcessingInfo, nil
}

func (c *Client) commandRequest(ctx context.Context, method string, params url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.mediaURL()+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
}

func decodeMediaResponse(body []byte) (*mediaResponse, error) {
	var resp mediaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, err)
	}
	return &resp, nil
}
