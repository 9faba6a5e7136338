package granola_test

import (
	"testing"
	"time"

	"github.com/fwojciec/granola"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	t.Parallel()

	t.Run("normalizes a full document", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"id": "0b7c1d2e-0000-4000-8000-000000000001",
			"title": "Data Sync Retro",
			"created_at": "2025-03-03T09:58:00.123Z",
			"updated_at": "2025-03-03T11:00:00Z",
			"workspace_id": "ws-1",
			"meeting_end_count": 1,
			"notes_markdown": "plain notes",
			"people": {
				"attendees": [
					{"name": "Charlie Smith", "email": "charlie@x.com"},
					{"email": "bob@x.com", "details": {"person": {"name": {"fullName": "Bob Jones"}}}}
				]
			},
			"google_calendar_event": {
				"start": {"dateTime": "2025-03-03T10:00:00-05:00"},
				"end": {"dateTime": "2025-03-03T10:45:00-05:00"}
			},
			"last_viewed_panel": {
				"content": {"type": "doc", "content": []},
				"original_content": "<p>hi</p>"
			}
		}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, "0b7c1d2e-0000-4000-8000-000000000001", doc.ID)
		assert.Equal(t, "Data Sync Retro", doc.Title)
		assert.Equal(t, "ws-1", doc.WorkspaceID)
		assert.Equal(t, 1, doc.MeetingEndCount)
		assert.Equal(t, "plain notes", doc.NotesMarkdown)
		assert.Equal(t, 45, doc.DurationMin)
		require.NotNil(t, doc.CalendarStart)
		assert.Equal(t, time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC), *doc.CalendarStart)
		assert.Equal(t, []granola.Attendee{
			{Name: "Charlie Smith", Email: "charlie@x.com"},
			{Name: "Bob Jones", Email: "bob@x.com"},
		}, doc.Attendees)
		require.NotNil(t, doc.Panel)
		assert.NotNil(t, doc.Panel.Content)
		assert.Equal(t, "<p>hi</p>", doc.Panel.HTML)
		assert.JSONEq(t, raw, string(doc.Raw))
	})

	t.Run("degrades mistyped fields to zero values", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"id": "abc",
			"title": 42,
			"meeting_end_count": "two",
			"people": "nobody",
			"google_calendar_event": {"start": {"dateTime": "not a time"}}
		}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, "abc", doc.ID)
		assert.Empty(t, doc.Title)
		assert.Equal(t, 0, doc.MeetingEndCount)
		assert.True(t, doc.InProgress())
		assert.Nil(t, doc.CalendarStart)
		assert.Empty(t, doc.Attendees)
		assert.Nil(t, doc.Panel)
		assert.Equal(t, 0, doc.DurationMin)
	})

	t.Run("rejects document without id", func(t *testing.T) {
		t.Parallel()

		_, err := granola.ParseDocument([]byte(`{"title": "x"}`))

		assert.Equal(t, granola.EINVALID, granola.ErrorCode(err))
	})

	t.Run("rejects non-object payload", func(t *testing.T) {
		t.Parallel()

		_, err := granola.ParseDocument([]byte(`[1, 2]`))

		assert.Equal(t, granola.EINVALID, granola.ErrorCode(err))
	})

	t.Run("falls back to calendar attendees", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"id": "abc",
			"google_calendar_event": {
				"attendees": [{"email": "dana@x.com", "displayName": "Dana"}, {"email": "eve@x.com"}]
			}
		}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, []granola.Attendee{
			{Name: "Dana", Email: "dana@x.com"},
			{Email: "eve@x.com"},
		}, doc.Attendees)
	})

	t.Run("reads duration from extended properties string", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"id": "abc",
			"google_calendar_event": {
				"extendedProperties": {"private": {"meetingParams": "{\"duration\": 30}"}}
			}
		}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, 30, doc.DurationMin)
	})

	t.Run("reads duration from extended properties object", func(t *testing.T) {
		t.Parallel()

		raw := `{
			"id": "abc",
			"google_calendar_event": {
				"extendedProperties": {"shared": {"cron.zoomMeeting": {"duration": 25}}}
			}
		}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, 25, doc.DurationMin)
	})

	t.Run("ignores panel content that is not a document", func(t *testing.T) {
		t.Parallel()

		raw := `{"id": "abc", "last_viewed_panel": {"content": {"type": "paragraph"}}}`

		doc, err := granola.ParseDocument([]byte(raw))

		require.NoError(t, err)
		assert.Nil(t, doc.Panel)
	})
}

func TestDocument_Date(t *testing.T) {
	t.Parallel()

	t.Run("prefers calendar start", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
		doc := &granola.Document{CalendarStart: &start, CreatedAt: "2025-01-01T00:00:00Z"}

		assert.Equal(t, start, *doc.Date())
	})

	t.Run("falls back to created_at then updated_at", func(t *testing.T) {
		t.Parallel()

		doc := &granola.Document{UpdatedAt: "2025-01-05T08:00:00Z"}

		assert.Equal(t, time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC), *doc.Date())
	})

	t.Run("returns nil when undated", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, (&granola.Document{}).Date())
	})
}

func TestParseTranscript(t *testing.T) {
	t.Parallel()

	t.Run("parses utterances", func(t *testing.T) {
		t.Parallel()

		raw := `[
			{"source": "microphone", "text": "hello", "start_timestamp": "2025-03-03T15:00:01Z"},
			{"source": "system", "text": "hi there"},
			"garbage"
		]`

		tr := granola.ParseTranscript([]byte(raw))

		require.NotNil(t, tr)
		require.Len(t, tr.Utterances, 2)
		assert.Equal(t, "hello", tr.Utterances[0].Text)
		assert.Equal(t, "system", tr.Utterances[1].Source)
		assert.Equal(t, []string{"microphone", "system"}, tr.Sources())
	})

	t.Run("returns nil for empty or non-array payloads", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, granola.ParseTranscript([]byte(`[]`)))
		assert.Nil(t, granola.ParseTranscript([]byte(`{"error": "nope"}`)))
		assert.Nil(t, granola.ParseTranscript(nil))
	})
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-03-03T10:00:00Z", time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), true},
		{"2025-03-03T10:00:00.5+01:00", time.Date(2025, 3, 3, 9, 0, 0, 500000000, time.UTC), true},
		{"2025-03-03T10:00:00", time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := granola.ParseTime(tt.in)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
