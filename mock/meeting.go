package mock

import (
	"context"

	"github.com/fwojciec/granola"
)

var _ granola.MeetingStore = (*MeetingStore)(nil)

// MeetingStore is a mock implementation of granola.MeetingStore.
type MeetingStore struct {
	RootFn           func() string
	MeetingDirFn     func(id string) (string, error)
	WriteMeetingFn   func(ctx context.Context, files *granola.MeetingFiles) error
	ExistsFn         func(ctx context.Context, id string) (bool, error)
	ListIDsFn        func(ctx context.Context) ([]string, error)
	ReadMetadataFn   func(ctx context.Context, id string) (*granola.Metadata, error)
	ReadDocumentFn   func(ctx context.Context, id string) (*granola.Document, error)
	LayoutFn         func(ctx context.Context, id string) (*granola.FolderLayout, error)
	ReadTranscriptFn func(ctx context.Context, id string) (string, error)
	ReadNotesFn      func(ctx context.Context, id string) (string, error)
}

func (s *MeetingStore) Root() string {
	return s.RootFn()
}

func (s *MeetingStore) MeetingDir(id string) (string, error) {
	return s.MeetingDirFn(id)
}

func (s *MeetingStore) WriteMeeting(ctx context.Context, files *granola.MeetingFiles) error {
	return s.WriteMeetingFn(ctx, files)
}

func (s *MeetingStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.ExistsFn(ctx, id)
}

func (s *MeetingStore) ListIDs(ctx context.Context) ([]string, error) {
	return s.ListIDsFn(ctx)
}

func (s *MeetingStore) ReadMetadata(ctx context.Context, id string) (*granola.Metadata, error) {
	return s.ReadMetadataFn(ctx, id)
}

func (s *MeetingStore) ReadDocument(ctx context.Context, id string) (*granola.Document, error) {
	return s.ReadDocumentFn(ctx, id)
}

func (s *MeetingStore) Layout(ctx context.Context, id string) (*granola.FolderLayout, error) {
	return s.LayoutFn(ctx, id)
}

func (s *MeetingStore) ReadTranscript(ctx context.Context, id string) (string, error) {
	return s.ReadTranscriptFn(ctx, id)
}

func (s *MeetingStore) ReadNotes(ctx context.Context, id string) (string, error) {
	return s.ReadNotesFn(ctx, id)
}
