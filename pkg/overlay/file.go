package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// FileStore is a file-based overlay store for CLI applications.
// Records are stored as JSON files at <baseDir>/<container>/<key>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to ~/.config/entitydiagram/overlay/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "entitydiagram", "overlay")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create overlay dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(container, key string) string {
	return filepath.Join(s.baseDir, container, key+".json")
}

func (s *FileStore) Get(ctx context.Context, container, key string) (*Record, error) {
	if err := validate(container, key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(container, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read overlay file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s/%s", container, key)
	}
	return &rec, nil
}

func (s *FileStore) Put(ctx context.Context, rec Record) error {
	if err := validate(rec.Container, rec.Key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	path := s.recordPath(rec.Container, rec.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return storeErr("put", rec, err)
	}
	// Write to a sibling file and rename so readers never see a partial record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return storeErr("put", rec, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return storeErr("put", rec, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for overlay files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func validate(container, key string) error {
	if err := errors.ValidateContainer(container); err != nil {
		return err
	}
	return errors.ValidateContainer(key)
}

var _ Store = (*FileStore)(nil)
