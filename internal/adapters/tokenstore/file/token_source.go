package file

import (
	"log/slog"
	"media-upload/internal/core/port"
	"sync"

	"golang.org/x/oauth2"
)

type persistingTokenSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	store  port.TokenStore
	last   string
	logger *slog.Logger
}

// NewPersistingTokenSource saves every token src hands out that differs from the previous one.
// Refresh tokens are single use, a refreshed token that is not saved is lost on restart.
func NewPersistingTokenSource(src oauth2.TokenSource, store port.TokenStore, current *oauth2.Token, logger *slog.Logger) oauth2.TokenSource {
	p := &persistingTokenSource{src: src, store: store, logger: logger}
	if current != nil {
		p.last = current.AccessToken
	}
	return p
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken == p.last {
		return token, nil
	}
	p.last = token.AccessToken
	if err := p.store.Save(token); err != nil {
		p.logger.Warn("failed to save refreshed token", "error", err)
	} else {
		p.logger.Info("refreshed token saved", "expiry", token.Expiry)
	}
	return token, nil
}
