package granola

import (
	"context"
	"time"
)

// ListOptions selects one page of remote meeting documents.
type ListOptions struct {
	// Since drops documents dated before it. The boundary is inclusive.
	Since *time.Time

	// Cursor is the opaque page cursor returned by a previous call.
	// Empty selects the first page.
	Cursor string

	// Limit is the page size. Zero uses the client default.
	Limit int
}

// MeetingPage is one page of remote meeting documents, newest first.
type MeetingPage struct {
	Documents []*Document

	// NextCursor is empty when there are no further pages.
	NextCursor string

	// Invalid holds records that could not be normalized.
	Invalid []error
}

// Workspace is a remote workspace.
type Workspace struct {
	ID   string
	Name string
}

// Folder is a remote document list and the documents it contains.
type Folder struct {
	ID          string
	Name        string
	DocumentIDs []string
}

// API is the remote meeting service.
type API interface {
	// ListMeetings returns one page of meeting documents.
	ListMeetings(ctx context.Context, opts ListOptions) (*MeetingPage, error)

	// FetchTranscript returns the transcript of a document, or nil when
	// the document has none.
	FetchTranscript(ctx context.Context, id string) (*Transcript, error)

	ListWorkspaces(ctx context.Context) ([]*Workspace, error)
	ListFolders(ctx context.Context) ([]*Folder, error)
}

// NotesRenderer renders the notes of a document as markdown.
// An empty result means the document has no notes.
type NotesRenderer interface {
	RenderNotes(doc *Document) (string, error)
}

// Converter transforms HTML content into Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
