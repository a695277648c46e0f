package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// RefreshFunc exchanges a stored refresh token for a fresh access token.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// GoogleRefresher drives the Google token endpoint for Gmail connections.
type GoogleRefresher struct {
	ClientID     string
	ClientSecret string
}

func (g GoogleRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if g.ClientID == "" || g.ClientSecret == "" {
		return "", errors.New("oauth: missing Google mail client credentials")
	}

	cfg := &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("oauth: google refresh failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("oauth: google refresh returned no access token")
	}
	return tok.AccessToken, nil
}

// MicrosoftRefresher drives the Microsoft identity platform token endpoint
// for Outlook connections.
type MicrosoftRefresher struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (m MicrosoftRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.ClientID == "" || m.ClientSecret == "" || m.RedirectURI == "" {
		return "", errors.New("oauth: missing Microsoft mail client credentials")
	}

	cfg := &oauth2.Config{
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		RedirectURL:  m.RedirectURI,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		Scopes:       []string{"offline_access", "User.Read", "Mail.Read"},
	}

	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("oauth: microsoft refresh failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("oauth: microsoft refresh returned no access token")
	}
	return tok.AccessToken, nil
}
