package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// FileStore implements Store with one pretty-printed JSON array per category
// under a data directory. Each Save replaces the file atomically; concurrent
// read-modify-write cycles against one category are not serialized, so the
// last save wins.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding the category collection.
func (s *FileStore) Path(c model.Category) string {
	return filepath.Join(s.dir, c.FileName())
}

// Load reads the category file. A missing file loads as an empty collection.
func (s *FileStore) Load(ctx context.Context, c model.Category) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}

	if !c.Valid() {
		return nil, ErrInvalidCategory
	}

	data, err := os.ReadFile(s.Path(c))
	if errors.Is(err, os.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}

	return Decode(data)
}

// Save writes the collection to a temporary file and renames it into place.
func (s *FileStore) Save(ctx context.Context, c model.Category, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}

	if !c.Valid() {
		return ErrInvalidCategory
	}

	if records == nil {
		records = []model.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	data = append(data, '\n')

	return s.replace(c, data)
}

// replace writes data to a temp file private to this call and renames it
// over the category file, so overlapping saves never share a partial file.
func (s *FileStore) replace(c model.Category, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, c.FileName()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", c, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", c, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", c, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c, err)
	}
	if err = os.Rename(tmp.Name(), s.Path(c)); err != nil {
		return fmt.Errorf("replace %s: %w", c, err)
	}

	return nil
}

// Decode parses a collection file body.
func Decode(data []byte) ([]model.Record, error) {
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []model.Record{}
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: element %d is null", ErrCorrupt, i)
		}
	}
	return records, nil
}
