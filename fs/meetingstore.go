package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/granola"
	"github.com/google/uuid"
)

// File names inside a meeting folder.
const (
	DocumentFile       = "document.json"
	MetadataFile       = "metadata.json"
	TranscriptJSONFile = "transcript.json"
	TranscriptFile     = "transcript.md"
	NotesFile          = "notes.md"
)

// Ensure MeetingStore implements granola.MeetingStore at compile time.
var _ granola.MeetingStore = (*MeetingStore)(nil)

// MeetingStore keeps one folder per meeting under a root directory.
type MeetingStore struct {
	root string
}

// NewMeetingStore creates a MeetingStore rooted at root.
func NewMeetingStore(root string) *MeetingStore {
	return &MeetingStore{root: root}
}

// Root returns the directory holding all meeting folders.
func (s *MeetingStore) Root() string {
	return s.root
}

// MeetingDir returns the folder path for id.
func (s *MeetingStore) MeetingDir(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || id == "." {
		return "", granola.Errorf(granola.EINVALID, "invalid meeting id %q", id)
	}
	return filepath.Join(s.root, id), nil
}

// WriteMeeting creates or overwrites the meeting folder. Files that the
// new contents no longer include are removed.
func (s *MeetingStore) WriteMeeting(ctx context.Context, files *granola.MeetingFiles) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if files == nil || files.Metadata == nil {
		return granola.Errorf(granola.EINVALID, "meeting files require metadata")
	}

	dir, err := s.MeetingDir(files.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	doc, err := indentJSON(files.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, DocumentFile), doc, 0644); err != nil {
		return err
	}

	meta, err := marshalJSON(files.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, MetadataFile), meta, 0644); err != nil {
		return err
	}

	if err := s.writeTranscript(dir, files.Transcript); err != nil {
		return err
	}

	notesPath := filepath.Join(dir, NotesFile)
	if files.Notes == "" {
		return removeIfExists(notesPath)
	}
	return writeFileAtomic(notesPath, []byte(files.Notes), 0644)
}

func (s *MeetingStore) writeTranscript(dir string, t *granola.Transcript) error {
	jsonPath := filepath.Join(dir, TranscriptJSONFile)
	mdPath := filepath.Join(dir, TranscriptFile)

	if t == nil || len(t.Utterances) == 0 {
		if err := removeIfExists(jsonPath); err != nil {
			return err
		}
		return removeIfExists(mdPath)
	}

	var raw []byte
	var err error
	if len(t.Raw) > 0 {
		raw, err = indentJSON(t.Raw)
	} else {
		raw, err = marshalJSON(t.Utterances)
	}
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := writeFileAtomic(jsonPath, raw, 0644); err != nil {
		return err
	}
	return writeFileAtomic(mdPath, []byte(granola.FormatTranscript(t)), 0644)
}

// Exists reports whether the folder of id exists.
func (s *MeetingStore) Exists(ctx context.Context, id string) (bool, error) {
	dir, err := s.MeetingDir(id)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ListIDs returns the sorted ids of all UUID-named meeting folders. A
// missing root yields an empty list.
func (s *MeetingStore) ListIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, e := range entries {
		if !e.IsDir() || !isUUID(e.Name()) {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

func isUUID(name string) bool {
	if len(name) != 36 {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}

// ReadMetadata returns the stored metadata of id.
func (s *MeetingStore) ReadMetadata(ctx context.Context, id string) (*granola.Metadata, error) {
	data, err := s.readFile(id, MetadataFile)
	if err != nil {
		return nil, err
	}
	var meta granola.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s of %s: %w", MetadataFile, id, err)
	}
	return &meta, nil
}

// ReadDocument returns the stored document of id.
func (s *MeetingStore) ReadDocument(ctx context.Context, id string) (*granola.Document, error) {
	data, err := s.readFile(id, DocumentFile)
	if err != nil {
		return nil, err
	}
	return granola.ParseDocument(data)
}

// Layout returns the file paths of id and which of them exist.
func (s *MeetingStore) Layout(ctx context.Context, id string) (*granola.FolderLayout, error) {
	dir, err := s.MeetingDir(id)
	if err != nil {
		return nil, err
	}

	layout := &granola.FolderLayout{
		Path:           dir,
		TranscriptPath: filepath.Join(dir, TranscriptFile),
		NotesPath:      filepath.Join(dir, NotesFile),
	}

	hasMD, err := fileExists(layout.TranscriptPath)
	if err != nil {
		return nil, err
	}
	hasJSON, err := fileExists(filepath.Join(dir, TranscriptJSONFile))
	if err != nil {
		return nil, err
	}
	layout.HasTranscript = hasMD || hasJSON

	if layout.HasNotes, err = fileExists(layout.NotesPath); err != nil {
		return nil, err
	}
	return layout, nil
}

// ReadTranscript returns transcript.md, rendering transcript.json when the
// markdown file is missing.
func (s *MeetingStore) ReadTranscript(ctx context.Context, id string) (string, error) {
	data, err := s.readFile(id, TranscriptFile)
	if err == nil {
		return string(data), nil
	} else if granola.ErrorCode(err) != granola.ENOTFOUND {
		return "", err
	}

	data, err = s.readFile(id, TranscriptJSONFile)
	if granola.ErrorCode(err) == granola.ENOTFOUND {
		return "", granola.Errorf(granola.EMISSING, "meeting %s has no transcript", id)
	} else if err != nil {
		return "", err
	}

	t := granola.ParseTranscript(data)
	if t == nil {
		return "", granola.Errorf(granola.EMISSING, "meeting %s has no transcript", id)
	}
	return granola.FormatTranscript(t), nil
}

// ReadNotes returns notes.md.
func (s *MeetingStore) ReadNotes(ctx context.Context, id string) (string, error) {
	data, err := s.readFile(id, NotesFile)
	if granola.ErrorCode(err) == granola.ENOTFOUND {
		return "", granola.Errorf(granola.EMISSING, "meeting %s has no notes", id)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *MeetingStore) readFile(id, name string) ([]byte, error) {
	dir, err := s.MeetingDir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, granola.Errorf(granola.ENOTFOUND, "%s not found for meeting %s", name, id)
	}
	return data, err
}
