package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStorage manages downloaded artifacts under a base directory. All
// paths passed to its methods are relative to that directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a FileStorage rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Path resolves a relative destination path against the base directory.
func (s *FileStorage) Path(rel string) string {
	return filepath.Join(s.dir, rel)
}

// Exists reports whether a non-empty regular file is present at the
// destination. Empty or partially visible files count as absent.
func (s *FileStorage) Exists(rel string) bool {
	info, err := os.Stat(s.Path(rel))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// CreateTemp creates a temporary file next to the final destination,
// creating the destination folder if needed. The temp name carries a
// random suffix so concurrent runs never collide.
func (s *FileStorage) CreateTemp(rel string) (*os.File, error) {
	final := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, fmt.Errorf("create destination folder: %w", err)
	}
	return os.OpenFile(fmt.Sprintf("%s.%s.part", final, uuid.NewString()), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// Commit closes tmp and atomically renames it to the final destination.
// A partially written file is never visible at the final path.
func (s *FileStorage) Commit(tmp *os.File, rel string) error {
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(rel)); err != nil {
		return fmt.Errorf("rename temporary file: %w", err)
	}
	return nil
}

// Discard closes and removes a temporary file, best effort.
func (s *FileStorage) Discard(tmp *os.File) {
	tmp.Close()
	os.Remove(tmp.Name())
}
