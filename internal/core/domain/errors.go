package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionNotFound is an error thrown when an upload record is not found
var ErrSessionNotFound = errors.New("session not found")

// ErrAlreadyExists is an error thrown when a record already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrAuthorizationDenied is an error thrown when the user or server refused the authorization
var ErrAuthorizationDenied = errors.New("authorization denied")

// ErrStateMismatch is an error thrown when the redirect state does not match the request
var ErrStateMismatch = errors.New("state mismatch")

// ErrMissingAuthorizationCode is an error thrown when the redirect carries no code
var ErrMissingAuthorizationCode = errors.New("missing authorization code")

// ErrTokenExchange is an error thrown when the authorization code could not be exchanged
var ErrTokenExchange = errors.New("token exchange failed")

// ErrRequestFailed is an error thrown when the API answers outside 2xx
var ErrRequestFailed = errors.New("request failed")

// ErrInvalidResponse is an error thrown when an API response cannot be understood
var ErrInvalidResponse = errors.New("invalid response")

// ErrEmptyMedia is an error thrown when the media has no bytes
var ErrEmptyMedia = errors.New("empty media")

// ErrNotInitialized is an error thrown when a step needs a media id that INIT has not assigned
var ErrNotInitialized = errors.New("upload not initialized")

// ErrAlreadyInitialized is an error thrown when INIT is attempted twice on a session
var ErrAlreadyInitialized = errors.New("upload already initialized")

// ErrAlreadyAppended is an error thrown when segments would be appended twice to a session
var ErrAlreadyAppended = errors.New("segments already appended")

// ErrIncompleteUpload is an error thrown when FINALIZE is attempted before every byte was appended
var ErrIncompleteUpload = errors.New("upload incomplete")

// ErrMediaIDAlreadyAssigned is an error thrown when a session media id would be reassigned
var ErrMediaIDAlreadyAssigned = errors.New("media id already assigned")

// ErrShortRead is an error thrown when the media source ends before its declared size
var ErrShortRead = errors.New("media source shorter than declared size")

// ErrProcessingFailed is an error thrown when server side processing failed
var ErrProcessingFailed = errors.New("media processing failed")

// ErrPollTimeout is an error thrown when processing did not finish within the poll bound
var ErrPollTimeout = errors.New("media processing poll timed out")

// ErrMediaNotReady is an error thrown when a post would reference unprocessed media
var ErrMediaNotReady = errors.New("media not ready")

// ErrUnsupportedMedia is an error thrown when a source object is not an uploadable video
var ErrUnsupportedMedia = errors.New("unsupported media")

// APIError is a non-2xx answer of the X API
type APIError struct {
	Command    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Command, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// IsPermanent reports whether retrying the same upload cannot succeed
func IsPermanent(err error) bool {
	switch {
	case errors.Is(err, ErrUnsupportedMedia),
		errors.Is(err, ErrEmptyMedia),
		errors.Is(err, ErrProcessingFailed):
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
