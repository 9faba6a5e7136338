package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingStore_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where MeetingStore is expected
	var _ granola.MeetingStore = &mock.MeetingStore{}
}

func TestMeetingStore_WriteMeeting(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteMeetingFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *granola.MeetingFiles
		s := &mock.MeetingStore{
			WriteMeetingFn: func(_ context.Context, files *granola.MeetingFiles) error {
				calledWith = files
				return nil
			},
		}

		files := &granola.MeetingFiles{
			ID:       "0b7c1d2e-0000-4000-8000-000000000001",
			Metadata: &granola.Metadata{Title: "Retro"},
			Notes:    "# Retro",
		}

		err := s.WriteMeeting(context.Background(), files)

		require.NoError(t, err)
		assert.Equal(t, files, calledWith)
	})
}
