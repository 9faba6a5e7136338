// Package auth hands out access tokens obtained by exchanging a rotating
// refresh token. Rotated credentials are persisted before the new access
// token is used, so a crash never leaves the store holding a refresh token
// the server has already invalidated.
//
// The manager assumes a single process: overlapping syncs must be
// serialized by the caller.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/granola"
	"golang.org/x/oauth2"
)

// ExpiryMargin is how long before its expiry an access token is refreshed.
const ExpiryMargin = 5 * time.Minute

// DefaultExpiresIn is used when the token endpoint omits a lifetime.
const DefaultExpiresIn = time.Hour

// Ensure Manager implements granola.TokenProvider at compile time.
var _ granola.TokenProvider = (*Manager)(nil)

// Manager implements granola.TokenProvider. The first call in a process
// always refreshes; later calls reuse the cached token until it is within
// ExpiryMargin of expiring or Invalidate is called.
type Manager struct {
	Store     granola.CredentialStore
	Exchanger granola.TokenExchanger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewManager creates a Manager.
func NewManager(store granola.CredentialStore, exchanger granola.TokenExchanger) *Manager {
	return &Manager{Store: store, Exchanger: exchanger, Now: time.Now}
}

// AccessToken returns a usable access token, refreshing it when needed.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != nil && m.token.Expiry.After(m.now()) {
		return m.token.AccessToken, nil
	}
	if err := m.refresh(ctx); err != nil {
		return "", err
	}
	return m.token.AccessToken, nil
}

// Invalidate drops the cached token so the next call refreshes.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
}

// refresh exchanges the stored refresh token and persists the rotation.
func (m *Manager) refresh(ctx context.Context) error {
	creds, err := m.Store.LoadCredentials(ctx)
	if granola.ErrorCode(err) == granola.ENOTFOUND {
		return granola.Errorf(granola.EAUTH, "no credentials configured; run `granola init`")
	} else if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	grant, err := m.Exchanger.Exchange(ctx, creds.ClientID, creds.RefreshToken)
	if err != nil {
		return err
	}
	if grant.AccessToken == "" {
		return granola.Errorf(granola.EAUTH, "token exchange returned no access token")
	}

	expiresIn := grant.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}
	expiry := m.now().Add(expiresIn).UTC().Truncate(time.Second)

	if grant.RefreshToken != "" {
		creds.RefreshToken = grant.RefreshToken
	}
	creds.AccessToken = grant.AccessToken
	creds.TokenExpiry = &expiry
	if err := m.Store.SaveCredentials(ctx, creds); err != nil {
		return fmt.Errorf("persist rotated credentials: %w", err)
	}

	m.token = &oauth2.Token{
		AccessToken:  grant.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: creds.RefreshToken,
		Expiry:       expiry.Add(-ExpiryMargin),
	}
	return nil
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
