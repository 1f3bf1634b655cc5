package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Fixture file names read by [FileSource].
const (
	SchemasFile      = "schemas.json"
	ProductTypesFile = "product-types.json"
	TypesFile        = "types.json"
)

// watchDebounce coalesces bursts of file events into one reload.
const watchDebounce = 200 * time.Millisecond

// FileSource reads catalogs from JSON fixture files in a directory.
//
// Each file holds either a paged query response or a bare JSON array.
// A missing file is an empty catalog.
type FileSource struct {
	dir    string
	logger *log.Logger
}

// NewFileSource creates a source reading from dir.
func NewFileSource(dir string, logger *log.Logger) *FileSource {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &FileSource{dir: dir, logger: logger}
}

// Dir returns the fixture directory.
func (s *FileSource) Dir() string { return s.dir }

// Schemas reads schemas.json.
func (s *FileSource) Schemas(ctx context.Context) ([]SchemaRecord, error) {
	return readFixture[SchemaRecord](filepath.Join(s.dir, SchemasFile))
}

// ProductTypes reads product-types.json.
func (s *FileSource) ProductTypes(ctx context.Context) ([]ProductType, error) {
	return readFixture[ProductType](filepath.Join(s.dir, ProductTypesFile))
}

// Types reads types.json.
func (s *FileSource) Types(ctx context.Context) ([]FieldType, error) {
	return readFixture[FieldType](filepath.Join(s.dir, TypesFile))
}

// Watch calls onChange after any fixture file is written, created, removed
// or renamed. Bursts of events are coalesced. Watch blocks until ctx is done.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.Debug("watching catalog fixtures", "dir", s.dir)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isFixture(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("catalog fixture changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func isFixture(path string) bool {
	switch filepath.Base(path) {
	case SchemasFile, ProductTypesFile, TypesFile:
		return true
	}
	return false
}

func readFixture[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var out []T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		return out, nil
	}
	var page PagedQueryResponse[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return page.Results, nil
}

var _ Source = (*FileSource)(nil)
