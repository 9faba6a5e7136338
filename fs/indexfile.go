package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/granola"
)

// Ensure IndexFile implements granola.IndexStore at compile time.
var _ granola.IndexStore = (*IndexFile)(nil)

// IndexFile stores the index as a single indented JSON file.
type IndexFile struct {
	path string
}

// NewIndexFile creates an IndexFile at path.
func NewIndexFile(path string) *IndexFile {
	return &IndexFile{path: path}
}

// Path returns the location of the index file.
func (f *IndexFile) Path() string {
	return f.path
}

// LoadIndex reads and parses the index file.
func (f *IndexFile) LoadIndex(ctx context.Context) (*granola.Index, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, granola.Errorf(granola.ENOTFOUND, "index not found at %s; run `granola index` or `granola sync` to build it", f.path)
	} else if err != nil {
		return nil, err
	}

	var idx granola.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, granola.Errorf(granola.ECORRUPT, "index at %s is corrupt (%v); run `granola index` to rebuild it", f.path, err)
	}
	if idx.SchemaVersion != granola.IndexSchemaVersion {
		return nil, granola.Errorf(granola.ECORRUPT, "index at %s has schema version %d, want %d; run `granola index` to rebuild it",
			f.path, idx.SchemaVersion, granola.IndexSchemaVersion)
	}
	if idx.Meetings == nil {
		idx.Meetings = []*granola.Meeting{}
	}
	return &idx, nil
}

// SaveIndex writes the index atomically.
func (f *IndexFile) SaveIndex(ctx context.Context, idx *granola.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if idx.Meetings == nil {
		idx.Meetings = []*granola.Meeting{}
	}

	data, err := marshalJSON(idx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	return writeFileAtomic(f.path, data, 0644)
}
