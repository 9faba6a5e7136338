package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/granola"
)

// Ensure LoggingTokenExchanger implements granola.TokenExchanger.
var _ granola.TokenExchanger = (*LoggingTokenExchanger)(nil)

// LoggingTokenExchanger wraps a TokenExchanger with logging. Tokens are
// never logged.
type LoggingTokenExchanger struct {
	next   granola.TokenExchanger
	logger *slog.Logger
}

// NewLoggingTokenExchanger creates a new LoggingTokenExchanger.
func NewLoggingTokenExchanger(next granola.TokenExchanger, logger *slog.Logger) *LoggingTokenExchanger {
	return &LoggingTokenExchanger{next: next, logger: logger}
}

// Exchange delegates to the wrapped exchanger and logs the outcome.
func (e *LoggingTokenExchanger) Exchange(ctx context.Context, clientID, refreshToken string) (grant *granola.TokenGrant, err error) {
	defer func(begin time.Time) {
		var expiresIn time.Duration
		rotated := false
		if grant != nil {
			expiresIn = grant.ExpiresIn
			rotated = grant.RefreshToken != "" && grant.RefreshToken != refreshToken
		}
		e.logger.Info("token exchange",
			"client_id", clientID,
			"rotated", rotated,
			"expires_in", expiresIn,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Exchange(ctx, clientID, refreshToken)
}
