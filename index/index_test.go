package index_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/granola"
	"github.com/fwojciec/granola/fs"
	"github.com/fwojciec/granola/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idOld = "1111aaaa-0000-4000-8000-000000000001"
	idNew = "1111bbbb-0000-4000-8000-000000000002"
	idBad = "2222cccc-0000-4000-8000-000000000003"
)

func writeMeeting(t *testing.T, store *fs.MeetingStore, id, title, start, notes string) {
	t.Helper()
	doc := json.RawMessage(`{"id":"` + id + `","title":"` + title + `",` +
		`"google_calendar_event":{"start":{"dateTime":"` + start + `"},` +
		`"attendees":[{"email":"ana@example.com","displayName":"Ana"}]}}`)
	transcript := granola.ParseTranscript([]byte(`[{"source":"system","text":"hello"}]`))
	require.NoError(t, store.WriteMeeting(context.Background(), &granola.MeetingFiles{
		ID:         id,
		Document:   doc,
		Metadata:   &granola.Metadata{DocumentID: id, Title: title, Folders: []granola.FolderRef{}, Sources: []string{"system"}},
		Transcript: transcript,
		Notes:      notes,
	}))
}

func TestBuilder_Rebuild(t *testing.T) {
	t.Parallel()

	t.Run("indexes folders newest first", func(t *testing.T) {
		t.Parallel()

		// Given two meeting folders
		root := t.TempDir()
		store := fs.NewMeetingStore(filepath.Join(root, "transcripts"))
		writeMeeting(t, store, idOld, "Kickoff", "2025-03-01T10:00:00Z", "")
		writeMeeting(t, store, idNew, "Review", "2025-03-02T15:30:00Z", "# Review\n\nnotes\n")

		indexFile := fs.NewIndexFile(filepath.Join(root, "index", "index.json"))
		builder := &index.Builder{
			Store:    store,
			Index:    indexFile,
			Location: time.UTC,
			Now:      func() time.Time { return time.Date(2025, 3, 3, 12, 0, 0, 500, time.UTC) },
		}

		// When I rebuild the index
		idx, err := builder.Rebuild(context.Background())

		// Then meetings are sorted by date with unique short ids and file flags
		require.NoError(t, err)
		require.Len(t, idx.Meetings, 2)
		assert.Equal(t, idNew, idx.Meetings[0].ID)
		assert.Equal(t, idOld, idx.Meetings[1].ID)
		assert.Equal(t, "1111bbb", idx.Meetings[0].ShortID)
		assert.Equal(t, "1111aaa", idx.Meetings[1].ShortID)
		assert.True(t, idx.Meetings[0].HasNotes)
		assert.False(t, idx.Meetings[1].HasNotes)
		assert.True(t, idx.Meetings[1].HasTranscript)
		assert.Equal(t, []granola.Attendee{{Name: "Ana", Email: "ana@example.com"}}, idx.Meetings[0].Attendees)
		assert.Equal(t, filepath.Join(store.Root(), idNew), idx.Meetings[0].Path)
		assert.Equal(t, store.Root(), idx.Root)
		assert.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), idx.GeneratedAt)

		// And the saved index loads back
		loaded, err := indexFile.LoadIndex(context.Background())
		require.NoError(t, err)
		assert.Len(t, loaded.Meetings, 2)
	})

	t.Run("rebuild is deterministic apart from generation time", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		store := fs.NewMeetingStore(filepath.Join(root, "transcripts"))
		writeMeeting(t, store, idOld, "Kickoff", "2025-03-01T10:00:00Z", "")
		writeMeeting(t, store, idNew, "Review", "2025-03-02T15:30:00Z", "notes")
		path := filepath.Join(root, "index.json")

		now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
		builder := &index.Builder{
			Store:    store,
			Index:    fs.NewIndexFile(path),
			Location: time.UTC,
			Now:      func() time.Time { return now },
		}

		_, err := builder.Rebuild(context.Background())
		require.NoError(t, err)
		first, err := os.ReadFile(path)
		require.NoError(t, err)

		now = now.Add(time.Hour)
		_, err = builder.Rebuild(context.Background())
		require.NoError(t, err)
		second, err := os.ReadFile(path)
		require.NoError(t, err)

		normalized := strings.ReplaceAll(string(second), "2025-03-03T13:00:00Z", "2025-03-03T12:00:00Z")
		assert.Equal(t, string(first), normalized)
	})

	t.Run("skips unreadable folders", func(t *testing.T) {
		t.Parallel()

		// Given one good folder and one with corrupt metadata
		root := t.TempDir()
		store := fs.NewMeetingStore(filepath.Join(root, "transcripts"))
		writeMeeting(t, store, idOld, "Kickoff", "2025-03-01T10:00:00Z", "")
		writeMeeting(t, store, idBad, "Broken", "2025-03-02T10:00:00Z", "")
		dir, err := store.MeetingDir(idBad)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fs.MetadataFile), []byte("{not json"), 0644))

		builder := &index.Builder{
			Store:    store,
			Index:    fs.NewIndexFile(filepath.Join(root, "index.json")),
			Location: time.UTC,
		}

		// When I rebuild
		idx, err := builder.Rebuild(context.Background())

		// Then only the readable folder is indexed
		require.NoError(t, err)
		require.Len(t, idx.Meetings, 1)
		assert.Equal(t, idOld, idx.Meetings[0].ID)
	})

	t.Run("empty store yields empty index", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		builder := &index.Builder{
			Store: fs.NewMeetingStore(filepath.Join(root, "missing")),
			Index: fs.NewIndexFile(filepath.Join(root, "index.json")),
		}

		idx, err := builder.Rebuild(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, idx.Meetings)
		assert.Empty(t, idx.Meetings)
	})
}
