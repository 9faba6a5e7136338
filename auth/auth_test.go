package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/auth"
	"github.com/fwojciec/granola/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore returns a credential store mock backed by a variable and
// records the order of operations in events.
func memoryStore(creds *granola.Credentials, events *[]string) *mock.CredentialStore {
	return &mock.CredentialStore{
		LoadCredentialsFn: func(_ context.Context) (*granola.Credentials, error) {
			if creds == nil {
				return nil, granola.Errorf(granola.ENOTFOUND, "no credentials")
			}
			c := *creds
			return &c, nil
		},
		SaveCredentialsFn: func(_ context.Context, c *granola.Credentials) error {
			*events = append(*events, "save:"+c.RefreshToken)
			saved := *c
			*creds = saved
			return nil
		},
	}
}

func TestManager_AccessToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates and persists refresh token before returning", func(t *testing.T) {
		t.Parallel()

		// Given stored credentials and an exchanger that rotates tokens
		var events []string
		creds := &granola.Credentials{RefreshToken: "rt-1", ClientID: "client_1"}
		exchanger := &mock.TokenExchanger{
			ExchangeFn: func(_ context.Context, clientID, refreshToken string) (*granola.TokenGrant, error) {
				events = append(events, "exchange:"+refreshToken)
				assert.Equal(t, "client_1", clientID)
				return &granola.TokenGrant{AccessToken: "at-1", RefreshToken: "rt-2", ExpiresIn: time.Hour}, nil
			},
		}
		m := auth.NewManager(memoryStore(creds, &events), exchanger)

		// When I request an access token
		token, err := m.AccessToken(context.Background())

		// Then the rotated refresh token was saved before the token was handed out
		require.NoError(t, err)
		assert.Equal(t, "at-1", token)
		assert.Equal(t, []string{"exchange:rt-1", "save:rt-2"}, events)
		assert.Equal(t, "rt-2", creds.RefreshToken)
		assert.Equal(t, "at-1", creds.AccessToken)
		require.NotNil(t, creds.TokenExpiry)
	})

	t.Run("reuses token until close to expiry", func(t *testing.T) {
		t.Parallel()

		// Given a manager with a controllable clock
		var events []string
		creds := &granola.Credentials{RefreshToken: "rt-1", ClientID: "client_1"}
		calls := 0
		exchanger := &mock.TokenExchanger{
			ExchangeFn: func(_ context.Context, _, refreshToken string) (*granola.TokenGrant, error) {
				calls++
				return &granola.TokenGrant{AccessToken: refreshToken + "-access", RefreshToken: refreshToken + "x", ExpiresIn: time.Hour}, nil
			},
		}
		now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
		m := auth.NewManager(memoryStore(creds, &events), exchanger)
		m.Now = func() time.Time { return now }

		// When I request tokens within the validity window
		first, err := m.AccessToken(context.Background())
		require.NoError(t, err)
		now = now.Add(50 * time.Minute)
		second, err := m.AccessToken(context.Background())
		require.NoError(t, err)

		// Then only one exchange happened
		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)

		// When the token is within the expiry margin
		now = now.Add(6 * time.Minute)
		third, err := m.AccessToken(context.Background())

		// Then it is refreshed with the rotated refresh token
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "rt-1x-access", third)
	})

	t.Run("invalidate forces refresh", func(t *testing.T) {
		t.Parallel()

		var events []string
		creds := &granola.Credentials{RefreshToken: "rt-1", ClientID: "client_1"}
		calls := 0
		exchanger := &mock.TokenExchanger{
			ExchangeFn: func(_ context.Context, _, _ string) (*granola.TokenGrant, error) {
				calls++
				return &granola.TokenGrant{AccessToken: "at", RefreshToken: "rt"}, nil
			},
		}
		m := auth.NewManager(memoryStore(creds, &events), exchanger)

		_, err := m.AccessToken(context.Background())
		require.NoError(t, err)
		m.Invalidate()
		_, err = m.AccessToken(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
	})

	t.Run("fails with auth error when nothing is configured", func(t *testing.T) {
		t.Parallel()

		var events []string
		m := auth.NewManager(memoryStore(nil, &events), &mock.TokenExchanger{})

		_, err := m.AccessToken(context.Background())

		assert.Equal(t, granola.EAUTH, granola.ErrorCode(err))
	})

	t.Run("fails with auth error without client id", func(t *testing.T) {
		t.Parallel()

		var events []string
		creds := &granola.Credentials{RefreshToken: "rt-1"}
		m := auth.NewManager(memoryStore(creds, &events), &mock.TokenExchanger{})

		_, err := m.AccessToken(context.Background())

		assert.Equal(t, granola.EAUTH, granola.ErrorCode(err))
	})

	t.Run("does not hand out token when persisting fails", func(t *testing.T) {
		t.Parallel()

		store := &mock.CredentialStore{
			LoadCredentialsFn: func(_ context.Context) (*granola.Credentials, error) {
				return &granola.Credentials{RefreshToken: "rt-1", ClientID: "c"}, nil
			},
			SaveCredentialsFn: func(_ context.Context, _ *granola.Credentials) error {
				return errors.New("disk full")
			},
		}
		exchanger := &mock.TokenExchanger{
			ExchangeFn: func(_ context.Context, _, _ string) (*granola.TokenGrant, error) {
				return &granola.TokenGrant{AccessToken: "at", RefreshToken: "rt-2"}, nil
			},
		}
		m := auth.NewManager(store, exchanger)

		token, err := m.AccessToken(context.Background())

		require.Error(t, err)
		assert.Empty(t, token)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("propagates exchange failure", func(t *testing.T) {
		t.Parallel()

		var events []string
		creds := &granola.Credentials{RefreshToken: "rt-1", ClientID: "c"}
		exchanger := &mock.TokenExchanger{
			ExchangeFn: func(_ context.Context, _, _ string) (*granola.TokenGrant, error) {
				return nil, granola.Errorf(granola.EAUTH, "refresh token rejected")
			},
		}
		m := auth.NewManager(memoryStore(creds, &events), exchanger)

		_, err := m.AccessToken(context.Background())

		assert.Equal(t, granola.EAUTH, granola.ErrorCode(err))
		assert.Empty(t, events)
	})
}
