package auth

import (
	"context"
	"fmt"
	"media-upload/internal/core/domain"
	"net/url"

	"golang.org/x/oauth2"
)

// Authenticate runs the authorization code flow with a S256 PKCE challenge
func (a *authService) Authenticate(ctx context.Context) (*oauth2.Token, error) {
	verifier := oauth2.GenerateVerifier()
	state := a.newState()
	authURL := a.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	redirect, err := a.receiver.Receive(ctx, authURL)
	if err != nil {
		return nil, fmt.Errorf("failed to receive authorization redirect: %w", err)
	}

	code, err := ParseRedirect(redirect, state)
	if err != nil {
		return nil, err
	}

	token, err := a.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenExchange, err)
	}
	a.logger.Info("authorization granted", "token_type", token.Type(), "expiry", token.Expiry, "refreshable", token.RefreshToken != "")

	if a.store != nil {
		if err := a.store.Save(token); err != nil {
			a.logger.Warn("failed to save token", "error", err)
		}
	}
	return token, nil
}

// ParseRedirect extracts the authorization code from the redirect URL and checks it answers the request made with state
func ParseRedirect(redirect *url.URL, state string) (string, error) {
	query := redirect.Query()

	if reason := query.Get("error"); reason != "" {
		if description := query.Get("error_description"); description != "" {
			reason = reason + ": " + description
		}
		return "", fmt.Errorf("%w: %s", domain.ErrAuthorizationDenied, reason)
	}
	if query.Get("state") != state {
		return "", domain.ErrStateMismatch
	}

	code := query.Get("code")
	if code == "" {
		return "", domain.ErrMissingAuthorizationCode
	}
	return code, nil
}
