package auth

import (
	"log/slog"
	"media-upload/internal/config"
	"media-upload/internal/core/port"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type authService struct {
	oauth    *oauth2.Config
	receiver port.RedirectReceiver
	store    port.TokenStore
	logger   *slog.Logger
	newState func() string
}

// NewAuthService creates the PKCE authenticator. store may be nil when tokens are not kept between runs.
func NewAuthService(cfg config.AuthConfig, receiver port.RedirectReceiver, store port.TokenStore, logger *slog.Logger) port.Authenticator {
	return &authService{
		oauth:    NewOAuthConfig(cfg),
		receiver: receiver,
		store:    store,
		logger:   logger,
		newState: uuid.NewString,
	}
}

// NewOAuthConfig builds the client configuration. Without a client secret the client is public
// and sends its id in the request body; otherwise it authenticates with HTTP Basic.
func NewOAuthConfig(cfg config.AuthConfig) *oauth2.Config {
	authStyle := oauth2.AuthStyleInHeader
	if cfg.ClientSecret == "" {
		authStyle = oauth2.AuthStyleInParams
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthorizeURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: authStyle,
		},
	}
}
