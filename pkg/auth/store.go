package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Credentials is the on-disk record holding the long-lived GitHub OAuth
// token. The short-lived Copilot token is never persisted; it is
// re-exchanged on demand.
type Credentials struct {
	// GitHubToken is the OAuth token obtained via device flow.
	GitHubToken string `json:"github_token"`

	// UpdatedAt records when the token was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a file-backed credential store. It is safe for concurrent use;
// the watcher reloads it when the file changes on disk.
type Store struct {
	path string

	mu    sync.RWMutex
	creds Credentials
}

// NewStore creates a store over the given file path and loads any existing
// credentials. A missing file is not an error; the store starts empty and
// Load can be retried after a login writes the file.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path, for the watcher.
func (s *Store) Path() string {
	return s.path
}

// Load reads credentials from disk, replacing the in-memory copy.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credential file %q: %w", s.path, err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Save writes credentials to disk with owner-only permissions and updates
// the in-memory copy. The write goes through a temp file and rename so a
// crash never leaves a truncated credential file.
func (s *Store) Save(creds Credentials) error {
	creds.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// GitHubToken returns the stored OAuth token, or empty if absent.
func (s *Store) GitHubToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.GitHubToken
}
