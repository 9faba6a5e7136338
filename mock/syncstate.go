package mock

import (
	"context"
	"time"

	"github.com/fwojciec/granola"
)

var _ granola.SyncStateService = (*SyncStateService)(nil)

// SyncStateService is a mock implementation of granola.SyncStateService.
type SyncStateService struct {
	FindCursorFn        func(ctx context.Context) (*granola.SyncCursor, error)
	SetCursorFn         func(ctx context.Context, since time.Time) error
	ResetCursorFn       func(ctx context.Context) error
	FindDocumentStateFn func(ctx context.Context, id string) (*granola.DocumentState, error)
	SaveDocumentStateFn func(ctx context.Context, state *granola.DocumentState) error
}

func (s *SyncStateService) FindCursor(ctx context.Context) (*granola.SyncCursor, error) {
	return s.FindCursorFn(ctx)
}

func (s *SyncStateService) SetCursor(ctx context.Context, since time.Time) error {
	return s.SetCursorFn(ctx, since)
}

func (s *SyncStateService) ResetCursor(ctx context.Context) error {
	return s.ResetCursorFn(ctx)
}

func (s *SyncStateService) FindDocumentState(ctx context.Context, id string) (*granola.DocumentState, error) {
	return s.FindDocumentStateFn(ctx, id)
}

func (s *SyncStateService) SaveDocumentState(ctx context.Context, state *granola.DocumentState) error {
	return s.SaveDocumentStateFn(ctx, state)
}
