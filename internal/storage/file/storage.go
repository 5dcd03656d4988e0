package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mcoot/truthlie/internal/storage"
)

const fileExt = ".json"

// Storage keeps each blob in its own JSON file under a data directory
type Storage struct {
	fs  afero.Fs
	dir string
}

// New creates a file storage rooted at dir, creating the directory if needed
func New(fs afero.Fs, dir string) (*Storage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{
		fs:  fs,
		dir: dir,
	}, nil
}

// NewOS creates a file storage on the real filesystem
func NewOS(dir string) (*Storage, error) {
	return New(afero.NewOsFs(), dir)
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// Dir returns the data directory
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes to a temporary file and renames it over the target,
// so a crash mid-write never leaves a truncated blob behind
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	tmp, err := afero.TempFile(s.fs, s.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Rename(tmpName, s.path(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
