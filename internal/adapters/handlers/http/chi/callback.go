package chi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// CallbackReceiver captures the OAuth redirect by serving the redirect URI locally.
// The redirect URI must point at this machine, e.g. http://127.0.0.1:8976/callback.
type CallbackReceiver struct {
	redirectURI *url.URL
	timeout     time.Duration
	out         io.Writer
	logger      *slog.Logger
}

// NewCallbackReceiver creates a receiver listening on the host and path of redirectURI
func NewCallbackReceiver(redirectURI string, timeout time.Duration, out io.Writer, logger *slog.Logger) (*CallbackReceiver, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, fmt.Errorf("callback mode needs an http redirect uri on a local address, got %q", redirectURI)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return &CallbackReceiver{
		redirectURI: u,
		timeout:     timeout,
		out:         out,
		logger:      logger,
	}, nil
}

// Receive prints authURL, then waits for the first request on the callback path
func (c *CallbackReceiver) Receive(ctx context.Context, authURL string) (*url.URL, error) {
	listener, err := net.Listen("tcp", c.redirectURI.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", c.redirectURI.Host, err)
	}
	return c.serve(ctx, listener, authURL)
}

func (c *CallbackReceiver) serve(ctx context.Context, listener net.Listener, authURL string) (*url.URL, error) {
	redirects := make(chan *url.URL, 1)
	callback := func(w http.ResponseWriter, r *http.Request) {
		received := *r.URL
		received.Scheme = c.redirectURI.Scheme
		received.Host = c.redirectURI.Host
		select {
		case redirects <- &received:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "Authorization received, you can close this window.\n")
	}

	server := &http.Server{
		Handler:           NewRouter(c.logger, c.redirectURI.Path, callback),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("failed to stop callback server", "error", err)
		}
	}()

	fmt.Fprintf(c.out, "Visit the following URL to authorize your App on behalf of your X handle in a browser:\n%s\n", authURL)
	c.logger.Info("waiting for authorization callback", "addr", listener.Addr().String(), "path", c.redirectURI.Path)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	select {
	case u := <-redirects:
		return u, nil
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("no authorization callback received: %w", ctx.Err())
	}
}
