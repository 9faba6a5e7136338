package granola

import (
	"context"
	"time"
)

// DefaultClientVersion is sent to the remote service when no version is
// configured.
const DefaultClientVersion = "5.354.0"

// Credentials are the persisted authentication settings.
type Credentials struct {
	RefreshToken  string     `json:"refresh_token"`
	ClientID      string     `json:"client_id"`
	AccessToken   string     `json:"access_token,omitempty"`
	TokenExpiry   *time.Time `json:"token_expiry,omitempty"`
	ClientVersion string     `json:"client_version,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Validate returns an error if the credentials cannot be used to
// obtain an access token.
func (c *Credentials) Validate() error {
	if c.RefreshToken == "" {
		return Errorf(EAUTH, "no refresh token configured")
	}
	if c.ClientID == "" {
		return Errorf(EAUTH, "no client id configured")
	}
	return nil
}

// CredentialStore persists credentials.
type CredentialStore interface {
	// LoadCredentials returns ENOTFOUND when nothing has been stored yet.
	LoadCredentials(ctx context.Context) (*Credentials, error)
	SaveCredentials(ctx context.Context, creds *Credentials) error
}

// TokenGrant is the result of a refresh token exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenExchanger exchanges a refresh token for an access token and a
// rotated refresh token.
type TokenExchanger interface {
	Exchange(ctx context.Context, clientID, refreshToken string) (*TokenGrant, error)
}

// TokenProvider hands out access tokens for API requests.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)

	// Invalidate forces the next AccessToken call to refresh.
	Invalidate()
}
