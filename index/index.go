// Package index rebuilds the local meeting index from the meeting store.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/granola"
)

// Builder derives the index from meeting folders. The index is disposable:
// it can always be rebuilt from the store.
type Builder struct {
	Store granola.MeetingStore
	Index granola.IndexStore

	// Location is the zone of date_local. Defaults to time.Local.
	Location *time.Location

	// Logger receives warnings about unreadable folders. Nil discards them.
	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Rebuild scans every meeting folder and saves a fresh index. Folders that
// cannot be read are logged and left out.
func (b *Builder) Rebuild(ctx context.Context) (*granola.Index, error) {
	ids, err := b.Store.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	meetings := make([]*granola.Meeting, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := b.readMeeting(ctx, id)
		if err != nil {
			b.logger().Warn("skipping meeting folder", "id", id, "err", err)
			continue
		}
		meetings = append(meetings, m)
	}

	granola.AssignShortIDs(meetings)
	granola.SortMeetings(meetings)

	idx := &granola.Index{
		SchemaVersion: granola.IndexSchemaVersion,
		GeneratedAt:   b.now().UTC().Truncate(time.Second),
		Root:          b.Store.Root(),
		Meetings:      meetings,
	}
	if err := b.Index.SaveIndex(ctx, idx); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	return idx, nil
}

func (b *Builder) readMeeting(ctx context.Context, id string) (*granola.Meeting, error) {
	meta, err := b.Store.ReadMetadata(ctx, id)
	if err != nil && granola.ErrorCode(err) != granola.ENOTFOUND {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	doc, err := b.Store.ReadDocument(ctx, id)
	if err != nil && granola.ErrorCode(err) != granola.ENOTFOUND {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if meta == nil && doc == nil {
		return nil, granola.Errorf(granola.ENOTFOUND, "folder has neither metadata nor document")
	}

	m := granola.NewMeeting(id, meta, doc, b.Location)

	layout, err := b.Store.Layout(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Path = layout.Path
	m.TranscriptPath = layout.TranscriptPath
	m.NotesPath = layout.NotesPath
	m.HasTranscript = layout.HasTranscript
	m.HasNotes = layout.HasNotes
	return m, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}
