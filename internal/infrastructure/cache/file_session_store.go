package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/erp/dashboard/internal/infrastructure/auth"
)

// FileSessionStore persists the session as JSON in the user's config directory
type FileSessionStore struct {
	path string
}

// DefaultSessionPath returns <user config dir>/erp-dashboard/session.json
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "erp-dashboard", "session.json"), nil
}

// NewFileSessionStore creates a store writing to path
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Save implements auth.SessionStore. The file is only readable by the owner.
func (s *FileSessionStore) Save(_ context.Context, snap auth.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Load implements auth.SessionStore
func (s *FileSessionStore) Load(_ context.Context) (*auth.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var snap auth.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &snap, nil
}

// Delete implements auth.SessionStore
func (s *FileSessionStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ auth.SessionStore = (*FileSessionStore)(nil)
