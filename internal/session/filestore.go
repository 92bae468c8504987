package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists the session list as a JSON file on the local
// filesystem. It is the default backend for single-instance deployments.
type FileStore struct {
	path string
}

// NewFileStore initializes a FileStore at the given path, creating the
// parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session: store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("session: ensure store directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the persisted session list. A missing file is an empty list; a
// corrupt file is an error the caller may choose to treat as empty.
func (s *FileStore) Load(ctx context.Context) ([]GenerationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read store: %w", err)
	}
	var sessions []GenerationSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("session: decode store: %w", err)
	}
	return sessions, nil
}

// Save replaces the persisted list.
func (s *FileStore) Save(ctx context.Context, sessions []GenerationSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("session: encode store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("session: write store: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
