package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/granola"
)

// Compile-time interface verification.
var _ granola.SyncStateService = (*SyncStateService)(nil)

const cursorKey = "cursor"

// SyncStateService implements granola.SyncStateService using SQLite.
type SyncStateService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewSyncStateService creates a new SyncStateService.
func NewSyncStateService(db *DB) *SyncStateService {
	return &SyncStateService{db: db, Now: time.Now}
}

// FindCursor returns the sync cursor. A cursor that was never set is
// returned empty.
func (s *SyncStateService) FindCursor(ctx context.Context) (*granola.SyncCursor, error) {
	var value, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT value, updated_at FROM sync_state WHERE key = ?
	`, cursorKey).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &granola.SyncCursor{}, nil
	}
	if err != nil {
		return nil, err
	}

	since, err := parseRFC3339(value, "cursor")
	if err != nil {
		return nil, err
	}
	updated, err := parseRFC3339(updatedAt, "updated_at")
	if err != nil {
		return nil, err
	}
	return &granola.SyncCursor{Since: &since, UpdatedAt: &updated}, nil
}

// SetCursor stores since as the new high-water mark.
func (s *SyncStateService) SetCursor(ctx context.Context, since time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, cursorKey, formatTime(since), formatTime(s.Now()))
	return err
}

// ResetCursor clears the sync cursor.
func (s *SyncStateService) ResetCursor(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_state WHERE key = ?`, cursorKey)
	return err
}

// FindDocumentState returns the recorded state of a document.
func (s *SyncStateService) FindDocumentState(ctx context.Context, id string) (*granola.DocumentState, error) {
	state := granola.DocumentState{ID: id}
	var syncedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, remote_updated_at, synced_at
		FROM document_states
		WHERE id = ?
	`, id).Scan(&state.ContentHash, &state.RemoteUpdatedAt, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, granola.Errorf(granola.ENOTFOUND, "document state not found")
	}
	if err != nil {
		return nil, err
	}

	if state.SyncedAt, err = parseRFC3339(syncedAt, "synced_at"); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveDocumentState creates or replaces the state of a document. A zero
// SyncedAt is set to the current time.
func (s *SyncStateService) SaveDocumentState(ctx context.Context, state *granola.DocumentState) error {
	if state.ID == "" {
		return granola.Errorf(granola.EINVALID, "document state requires an id")
	}
	if state.SyncedAt.IsZero() {
		state.SyncedAt = s.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_states (id, content_hash, remote_updated_at, synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_hash = excluded.content_hash,
			remote_updated_at = excluded.remote_updated_at,
			synced_at = excluded.synced_at
	`, state.ID, state.ContentHash, state.RemoteUpdatedAt, formatTime(state.SyncedAt))
	return err
}
