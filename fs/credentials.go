package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/granola"
)

// Ensure CredentialStore implements granola.CredentialStore at compile time.
var _ granola.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps credentials in a JSON config file readable only
// by its owner. Keys it does not know about are preserved on save.
type CredentialStore struct {
	path string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewCredentialStore creates a CredentialStore backed by path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path, Now: time.Now}
}

// Path returns the location of the config file.
func (s *CredentialStore) Path() string {
	return s.path
}

// LoadCredentials reads the config file.
func (s *CredentialStore) LoadCredentials(ctx context.Context) (*granola.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, granola.Errorf(granola.ENOTFOUND, "no credentials at %s; run `granola init`", s.path)
	} else if err != nil {
		return nil, err
	}

	var creds granola.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return &creds, nil
}

// SaveCredentials replaces the config file atomically with mode 0600.
func (s *CredentialStore) SaveCredentials(ctx context.Context, creds *granola.Credentials) error {
	now := s.Now().UTC().Truncate(time.Second)
	creds.UpdatedAt = &now

	fields := make(map[string]json.RawMessage)
	if data, err := os.ReadFile(s.path); err == nil {
		// Unparseable files are replaced wholesale.
		_ = json.Unmarshal(data, &fields)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	known := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	for _, key := range []string{"access_token", "token_expiry", "client_version"} {
		delete(fields, key)
	}
	for k, v := range known {
		fields[k] = v
	}

	out, err := marshalJSON(fields)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return writeFileAtomic(s.path, out, 0600)
}
