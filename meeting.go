package granola

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Meeting is one record of the local index. It carries metadata only;
// transcript and notes bodies stay in the meeting folder.
type Meeting struct {
	ID             string     `json:"id"`
	ShortID        string     `json:"short_id"`
	Title          string     `json:"title"`
	DateUTC        *time.Time `json:"date_utc"`
	DateLocal      *time.Time `json:"date_local"`
	DurationMin    int        `json:"duration_min"`
	Attendees      []Attendee `json:"attendees_raw"`
	HasTranscript  bool       `json:"has_transcript"`
	HasNotes       bool       `json:"has_notes"`
	Path           string     `json:"path"`
	TranscriptPath string     `json:"transcript_path"`
	NotesPath      string     `json:"notes_path"`
}

// Attendee is a meeting participant in source order.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName returns the attendee name, or the local part of the email
// when no name is known.
func (a Attendee) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	local, _, _ := strings.Cut(a.Email, "@")
	return local
}

// NewMeeting builds an index record from the stored metadata and document
// of one meeting folder. Either source may be nil. Paths, short id and file
// presence flags are filled in by the index builder.
func NewMeeting(id string, meta *Metadata, doc *Document, loc *time.Location) *Meeting {
	if loc == nil {
		loc = time.Local
	}

	m := &Meeting{ID: id, Attendees: []Attendee{}}

	if meta != nil && meta.Title != "" {
		m.Title = meta.Title
	} else if doc != nil {
		m.Title = doc.Title
	}

	if doc != nil {
		m.DurationMin = doc.DurationMin
		if len(doc.Attendees) > 0 {
			m.Attendees = append(m.Attendees, doc.Attendees...)
		}
	}

	if t := meetingDate(meta, doc); t != nil {
		utc := t.UTC().Truncate(time.Second)
		local := utc.In(loc)
		m.DateUTC = &utc
		m.DateLocal = &local
	}

	return m
}

// meetingDate picks the best known start time: the calendar event first,
// then the stored metadata, then the document timestamps.
func meetingDate(meta *Metadata, doc *Document) *time.Time {
	if doc != nil && doc.CalendarStart != nil {
		return doc.CalendarStart
	}
	var candidates []string
	if meta != nil {
		candidates = append(candidates, meta.MeetingDate, meta.CreatedAt, meta.UpdatedAt)
	}
	if doc != nil {
		candidates = append(candidates, doc.CreatedAt, doc.UpdatedAt)
	}
	for _, s := range candidates {
		if t, ok := ParseTime(s); ok {
			return &t
		}
	}
	return nil
}

// Metadata is the normalized per-meeting record written to metadata.json.
// It contains no sync timestamps so that unchanged remote data rewrites
// byte-identical files.
type Metadata struct {
	DocumentID      string      `json:"document_id"`
	Title           string      `json:"title"`
	CreatedAt       string      `json:"created_at,omitempty"`
	UpdatedAt       string      `json:"updated_at,omitempty"`
	MeetingDate     string      `json:"meeting_date,omitempty"`
	WorkspaceID     string      `json:"workspace_id,omitempty"`
	WorkspaceName   string      `json:"workspace_name,omitempty"`
	Folders         []FolderRef `json:"folders"`
	Sources         []string    `json:"sources"`
	MeetingEndCount int         `json:"meeting_end_count"`
}

// FolderRef names a remote folder (document list) a meeting belongs to.
type FolderRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MeetingFiles is everything written into one meeting folder.
type MeetingFiles struct {
	ID         string
	Document   json.RawMessage
	Metadata   *Metadata
	Transcript *Transcript // nil when the meeting has no transcript
	Notes      string      // rendered markdown, empty when there are no notes
}

// FolderLayout describes the files of one meeting folder.
type FolderLayout struct {
	Path           string
	TranscriptPath string
	NotesPath      string
	HasTranscript  bool
	HasNotes       bool
}

// MeetingStore manages per-meeting folders on local disk.
type MeetingStore interface {
	// Root returns the directory holding all meeting folders.
	Root() string

	// MeetingDir returns the folder path for id. Ids that could escape
	// the root are rejected with EINVALID.
	MeetingDir(id string) (string, error)

	// WriteMeeting creates or overwrites the folder of files.ID. Every file
	// is replaced atomically.
	WriteMeeting(ctx context.Context, files *MeetingFiles) error

	Exists(ctx context.Context, id string) (bool, error)

	// ListIDs returns the ids of all meeting folders, sorted.
	ListIDs(ctx context.Context) ([]string, error)

	ReadMetadata(ctx context.Context, id string) (*Metadata, error)
	ReadDocument(ctx context.Context, id string) (*Document, error)
	Layout(ctx context.Context, id string) (*FolderLayout, error)

	// ReadTranscript returns the rendered transcript of a meeting.
	// Returns EMISSING when the meeting has no transcript.
	ReadTranscript(ctx context.Context, id string) (string, error)

	// ReadNotes returns the rendered notes of a meeting.
	// Returns EMISSING when the meeting has no notes.
	ReadNotes(ctx context.Context, id string) (string, error)
}
