package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore persists the checkpoint as a single JSON document on disk.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a torn document behind.
type FileStore struct {
	log  *zap.SugaredLogger
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(log *zap.SugaredLogger, path string) *FileStore {
	return &FileStore{log: log, path: path}
}

// Load reads the checkpoint document. A missing file yields an empty
// checkpoint; a corrupt file is logged and also yields an empty checkpoint,
// matching a fresh start.
func (s *FileStore) Load(_ context.Context) (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file %s: %w", s.path, err)
	}

	cp := New()
	if err := json.Unmarshal(data, cp); err != nil {
		s.log.Warnw("checkpoint file is corrupt, starting fresh",
			"path", s.path, "error", err)
		return New(), nil
	}
	return cp, nil
}

// Save writes the checkpoint document atomically.
func (s *FileStore) Save(_ context.Context, cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write checkpoint file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint file %s: %w", s.path, err)
	}
	return nil
}

// Reset removes the checkpoint file if it exists.
func (s *FileStore) Reset(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint file %s: %w", s.path, err)
	}
	return nil
}

// Path returns the absolute path of the checkpoint file.
func (s *FileStore) Path() string {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return s.path
	}
	return abs
}
