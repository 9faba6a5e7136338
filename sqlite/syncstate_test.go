package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStateService_Cursor(t *testing.T) {
	t.Parallel()

	t.Run("returns empty cursor before first sync", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSyncStateService(setupTestDB(t))

		cursor, err := svc.FindCursor(context.Background())

		require.NoError(t, err)
		assert.Nil(t, cursor.Since)
		assert.Nil(t, cursor.UpdatedAt)
	})

	t.Run("stores and advances cursor", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSyncStateService(setupTestDB(t))
		now := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
		svc.Now = func() time.Time { return now }

		first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		second := time.Date(2025, 3, 3, 10, 0, 0, 500, time.UTC)
		require.NoError(t, svc.SetCursor(ctx, first))
		require.NoError(t, svc.SetCursor(ctx, second))

		cursor, err := svc.FindCursor(ctx)

		require.NoError(t, err)
		require.NotNil(t, cursor.Since)
		assert.True(t, second.Equal(*cursor.Since))
		require.NotNil(t, cursor.UpdatedAt)
		assert.True(t, now.Equal(*cursor.UpdatedAt))
	})

	t.Run("reset clears cursor", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSyncStateService(setupTestDB(t))
		require.NoError(t, svc.SetCursor(ctx, time.Now()))

		require.NoError(t, svc.ResetCursor(ctx))

		cursor, err := svc.FindCursor(ctx)
		require.NoError(t, err)
		assert.Nil(t, cursor.Since)
	})
}

func TestSyncStateService_DocumentState(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for unknown document", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSyncStateService(setupTestDB(t))

		_, err := svc.FindDocumentState(context.Background(), "missing")

		assert.Equal(t, granola.ENOTFOUND, granola.ErrorCode(err))
	})

	t.Run("saves and replaces state", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSyncStateService(setupTestDB(t))
		now := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
		svc.Now = func() time.Time { return now }

		require.NoError(t, svc.SaveDocumentState(ctx, &granola.DocumentState{
			ID: "doc-1", ContentHash: "aaaa", RemoteUpdatedAt: "2025-03-01T00:00:00Z",
		}))
		require.NoError(t, svc.SaveDocumentState(ctx, &granola.DocumentState{
			ID: "doc-1", ContentHash: "bbbb", RemoteUpdatedAt: "2025-03-02T00:00:00Z",
		}))

		state, err := svc.FindDocumentState(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "bbbb", state.ContentHash)
		assert.Equal(t, "2025-03-02T00:00:00Z", state.RemoteUpdatedAt)
		assert.True(t, now.Equal(state.SyncedAt))
	})

	t.Run("rejects state without id", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSyncStateService(setupTestDB(t))

		err := svc.SaveDocumentState(context.Background(), &granola.DocumentState{})

		assert.Equal(t, granola.EINVALID, granola.ErrorCode(err))
	})
}
