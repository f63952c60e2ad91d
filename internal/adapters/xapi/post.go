package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"media-upload/internal/core/domain"
	"net/http"
)

const commandPost = "POST"

type postMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type postRequest struct {
	Text  string    `json:"text"`
	Media postMedia `json:"media"`
}

type postResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// CreatePost publishes a post with the given media attached
func (c *Client) CreatePost(ctx context.Context, text string, mediaIDs []string) (*domain.Post, error) {
	payload, err := json.Marshal(postRequest{
		Text:  text,
		Media: postMedia{MediaIDs: mediaIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.postURL(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	body, err := c.do(ctx, commandPost, build)
	if err != nil {
		return nil, err
	}

	var resp postResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, err)
	}

	return &domain.Post{
		ID:   resp.Data.ID,
		Text: resp.Data.Text,
		Raw:  json.RawMessage(body),
	}, nil
}
