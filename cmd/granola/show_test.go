package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fwojciec/granola"
	main "github.com/fwojciec/granola/cmd/granola"
	"github.com/fwojciec/granola/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints details of a meeting resolved by short id", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.ShowCmd{ID: "aaaaaaa"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Weekly sync")
		assert.Contains(t, out, weeklyID)
		assert.Contains(t, out, "Ada Lovelace <ada@example.com>")
		assert.Contains(t, out, "/data/transcripts/"+weeklyID+"/transcript.md")
		assert.Contains(t, out, "/data/transcripts/"+weeklyID+"/notes.md")
	})

	t.Run("falls back to the email local part for unnamed attendees", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.ShowCmd{ID: "design"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "  grace\n")
		assert.NotContains(t, stdout.String(), "Transcript:")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.JSON = true

		err := (&main.ShowCmd{ID: designID}).Run(deps)

		require.NoError(t, err)
		var got granola.Meeting
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		assert.Equal(t, designID, got.ID)
		assert.Equal(t, 90, got.DurationMin)
	})

	t.Run("reports unknown identifiers", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.ShowCmd{ID: "standup"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, granola.ENOTFOUND, granola.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: no meeting matches")
	})

	t.Run("reports ambiguous identifiers", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		err := (&main.ShowCmd{ID: "e"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, granola.EAMBIGUOUS, granola.ErrorCode(err))
	})
}

func TestTranscriptCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the stored transcript", func(t *testing.T) {
		t.Parallel()

		var gotID string
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Meetings = &mock.MeetingStore{
			ReadTranscriptFn: func(_ context.Context, id string) (string, error) {
				gotID = id
				return "# Transcript\n\n**System**\n\nHello", nil
			},
		}

		err := (&main.TranscriptCmd{ID: "weekly"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, weeklyID, gotID)
		assert.Equal(t, "# Transcript\n\n**System**\n\nHello\n", stdout.String())
	})

	t.Run("reports a missing transcript", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Meetings = &mock.MeetingStore{
			ReadTranscriptFn: func(_ context.Context, _ string) (string, error) {
				return "", granola.Errorf(granola.EMISSING, "meeting has no transcript")
			},
		}

		err := (&main.TranscriptCmd{ID: designID}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, granola.EMISSING, granola.ErrorCode(err))
		assert.Equal(t, "error: meeting has no transcript\n", stderr.String())
		assert.Empty(t, stdout.String())
	})
}

func TestNotesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the stored notes", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Meetings = &mock.MeetingStore{
			ReadNotesFn: func(_ context.Context, _ string) (string, error) {
				return "# Weekly sync\n\n- Ship it\n", nil
			},
		}

		err := (&main.NotesCmd{ID: "aaaaaaa"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "# Weekly sync\n\n- Ship it\n", stdout.String())
	})

	t.Run("renders markdown for the terminal", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Meetings = &mock.MeetingStore{
			ReadNotesFn: func(_ context.Context, _ string) (string, error) {
				return "# Weekly sync\n\n- Ship it\n", nil
			},
		}

		err := (&main.NotesCmd{ID: "aaaaaaa", Render: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Ship it")
		assert.Empty(t, stderr.String())
	})
}
