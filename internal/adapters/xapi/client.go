package xapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"media-upload/internal/config"
	"media-upload/internal/core/domain"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

const maxErrorBody = 2048

// Client talks to the X API media upload and post endpoints.
// It owns the header set sent with every request.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	config     config.XAPIConfig
	retry      config.RetryConfig
	headers    http.Header
	logger     *slog.Logger
}

// NewClient returns Client
func NewClient(cfg config.XAPIConfig, retry config.RetryConfig, tokens oauth2.TokenSource, logger *slog.Logger) *Client {
	headers := make(http.Header)
	headers.Set("User-Agent", cfg.UserAgent)

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		tokens:     tokens,
		config:     cfg,
		retry:      retry,
		headers:    headers,
		logger:     logger,
	}
}

func (c *Client) mediaURL() string {
	return strings.TrimRight(c.config.BaseURL, "/") + c.config.MediaPath
}

func (c *Client) postURL() string {
	return strings.TrimRight(c.config.BaseURL, "/") + c.config.PostPath
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	if c.retry.MaxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	exp := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		exp.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		exp.MaxInterval = c.retry.MaxInterval
	}
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.retry.MaxAttempts-1)), ctx)
}

// do sends the request produced by build and returns the body of a 2xx response.
// build is called once per attempt so bodies can be replayed.
func (c *Client) do(ctx context.Context, command string, build func() (*http.Request, error)) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}

		token, err := c.tokens.Token()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to get access token: %w", err))
		}

		for key, values := range c.headers {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to send %s request: %w", command, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s response: %w", command, err)
		}

		c.logger.Debug("x api response",
			"command", command,
			"status", resp.StatusCode,
		)

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			body = respBody
			return nil
		}

		apiErr := &domain.APIError{
			Command:    command,
			StatusCode: resp.StatusCode,
			Body:       truncate(respBody, maxErrorBody),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying x api request",
			"command", command,
			"error", err,
			"wait", wait,
		)
	}

	if err := backoff.RetryNotify(operation, c.backOff(ctx), notify); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s %w: %w", command, domain.ErrRequestFailed, err)
	}

	return body, nil
}

func truncate(body []byte, limit int) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
