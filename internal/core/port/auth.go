package port

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"
)

// Authenticator obtains a user bearer token
type Authenticator interface {
	Authenticate(ctx context.Context) (*oauth2.Token, error)
}

// TokenStore persists a token between runs
type TokenStore interface {
	Save(token *oauth2.Token) error
	Load() (*oauth2.Token, error)
}

// RedirectReceiver shows the authorization URL to the user and returns the redirect URL the browser was sent to
type RedirectReceiver interface {
	Receive(ctx context.Context, authURL string) (*url.URL, error)
}
