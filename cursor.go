package granola

import (
	"context"
	"time"
)

// SyncCursor is the persisted high-water mark of incremental sync.
type SyncCursor struct {
	// Since is the latest meeting date whose folder was durably written.
	// Nil means no sync has completed yet.
	Since *time.Time

	// UpdatedAt is when the cursor was last advanced.
	UpdatedAt *time.Time
}

// DocumentState records what was last written for one meeting.
type DocumentState struct {
	ID              string
	ContentHash     string
	RemoteUpdatedAt string
	SyncedAt        time.Time
}

// SyncStateService persists the sync cursor and per-document state.
type SyncStateService interface {
	FindCursor(ctx context.Context) (*SyncCursor, error)
	SetCursor(ctx context.Context, since time.Time) error
	ResetCursor(ctx context.Context) error

	// FindDocumentState returns ENOTFOUND when the document was never synced.
	FindDocumentState(ctx context.Context, id string) (*DocumentState, error)
	SaveDocumentState(ctx context.Context, state *DocumentState) error
}
