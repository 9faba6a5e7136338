package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/granola"
)

// DefaultAuthURL is the endpoint that exchanges refresh tokens.
const DefaultAuthURL = "https://api.workos.com/user_management/authenticate"

// Ensure TokenExchanger implements granola.TokenExchanger at compile time.
var _ granola.TokenExchanger = (*TokenExchanger)(nil)

// TokenExchanger exchanges a refresh token with the identity provider.
// Every exchange rotates the refresh token.
type TokenExchanger struct {
	URL        string
	HTTPClient *http.Client
}

// NewTokenExchanger creates a TokenExchanger for DefaultAuthURL.
func NewTokenExchanger() *TokenExchanger {
	return &TokenExchanger{
		URL:        DefaultAuthURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Exchange trades refreshToken for an access token. A rejected refresh
// token is reported as EAUTH.
func (e *TokenExchanger) Exchange(ctx context.Context, clientID, refreshToken string) (*granola.TokenGrant, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, granola.Errorf(granola.ETRANSIENT, "token exchange: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, granola.Errorf(granola.ETRANSIENT, "token exchange: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, granola.Errorf(granola.EAUTH, "refresh token rejected (HTTP %d); run `granola init` with a fresh refresh token", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, granola.Errorf(granola.ETRANSIENT, "token exchange: HTTP %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("token exchange: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, granola.Errorf(granola.EAUTH, "token response has no access token")
	}
	if out.ExpiresIn <= 0 {
		out.ExpiresIn = 3600
	}

	return &granola.TokenGrant{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    time.Duration(out.ExpiresIn) * time.Second,
	}, nil
}
