package mock

import (
	"context"

	"github.com/fwojciec/granola"
)

var _ granola.API = (*API)(nil)

// API is a mock implementation of granola.API.
type API struct {
	ListMeetingsFn    func(ctx context.Context, opts granola.ListOptions) (*granola.MeetingPage, error)
	FetchTranscriptFn func(ctx context.Context, id string) (*granola.Transcript, error)
	ListWorkspacesFn  func(ctx context.Context) ([]*granola.Workspace, error)
	ListFoldersFn     func(ctx context.Context) ([]*granola.Folder, error)
}

func (a *API) ListMeetings(ctx context.Context, opts granola.ListOptions) (*granola.MeetingPage, error) {
	return a.ListMeetingsFn(ctx, opts)
}

func (a *API) FetchTranscript(ctx context.Context, id string) (*granola.Transcript, error) {
	return a.FetchTranscriptFn(ctx, id)
}

func (a *API) ListWorkspaces(ctx context.Context) ([]*granola.Workspace, error) {
	return a.ListWorkspacesFn(ctx)
}

func (a *API) ListFolders(ctx context.Context) ([]*granola.Folder, error) {
	return a.ListFoldersFn(ctx)
}
