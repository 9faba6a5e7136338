// Package slog decorates remote services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/granola"
)

// Ensure LoggingAPI implements granola.API.
var _ granola.API = (*LoggingAPI)(nil)

// LoggingAPI wraps an API with request logging.
type LoggingAPI struct {
	next   granola.API
	logger *slog.Logger
}

// NewLoggingAPI creates a new LoggingAPI.
func NewLoggingAPI(next granola.API, logger *slog.Logger) *LoggingAPI {
	return &LoggingAPI{next: next, logger: logger}
}

// ListMeetings delegates to the wrapped API and logs the page.
func (a *LoggingAPI) ListMeetings(ctx context.Context, opts granola.ListOptions) (page *granola.MeetingPage, err error) {
	defer func(begin time.Time) {
		var count, invalid int
		var next string
		if page != nil {
			count, invalid, next = len(page.Documents), len(page.Invalid), page.NextCursor
		}
		a.logger.Info("list meetings",
			"cursor", opts.Cursor,
			"count", count,
			"invalid", invalid,
			"next", next,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ListMeetings(ctx, opts)
}

// FetchTranscript delegates to the wrapped API and logs the transcript size.
func (a *LoggingAPI) FetchTranscript(ctx context.Context, id string) (t *granola.Transcript, err error) {
	defer func(begin time.Time) {
		utterances := 0
		if t != nil {
			utterances = len(t.Utterances)
		}
		a.logger.Debug("fetch transcript",
			"id", id,
			"utterances", utterances,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.FetchTranscript(ctx, id)
}

// ListWorkspaces delegates to the wrapped API and logs the count.
func (a *LoggingAPI) ListWorkspaces(ctx context.Context) (workspaces []*granola.Workspace, err error) {
	defer func(begin time.Time) {
		a.logger.Info("list workspaces",
			"count", len(workspaces),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ListWorkspaces(ctx)
}

// ListFolders delegates to the wrapped API and logs the count.
func (a *LoggingAPI) ListFolders(ctx context.Context) (folders []*granola.Folder, err error) {
	defer func(begin time.Time) {
		a.logger.Info("list folders",
			"count", len(folders),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ListFolders(ctx)
}
