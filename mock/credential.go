package mock

import (
	"context"

	"github.com/fwojciec/granola"
)

var _ granola.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is a mock implementation of granola.CredentialStore.
type CredentialStore struct {
	LoadCredentialsFn func(ctx context.Context) (*granola.Credentials, error)
	SaveCredentialsFn func(ctx context.Context, creds *granola.Credentials) error
}

func (s *CredentialStore) LoadCredentials(ctx context.Context) (*granola.Credentials, error) {
	return s.LoadCredentialsFn(ctx)
}

func (s *CredentialStore) SaveCredentials(ctx context.Context, creds *granola.Credentials) error {
	return s.SaveCredentialsFn(ctx, creds)
}

var _ granola.TokenExchanger = (*TokenExchanger)(nil)

// TokenExchanger is a mock implementation of granola.TokenExchanger.
type TokenExchanger struct {
	ExchangeFn func(ctx context.Context, clientID, refreshToken string) (*granola.TokenGrant, error)
}

func (e *TokenExchanger) Exchange(ctx context.Context, clientID, refreshToken string) (*granola.TokenGrant, error) {
	return e.ExchangeFn(ctx, clientID, refreshToken)
}

var _ granola.TokenProvider = (*TokenProvider)(nil)

// TokenProvider is a mock implementation of granola.TokenProvider.
type TokenProvider struct {
	AccessTokenFn func(ctx context.Context) (string, error)
	InvalidateFn  func()
}

func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	return p.AccessTokenFn(ctx)
}

func (p *TokenProvider) Invalidate() {
	p.InvalidateFn()
}
