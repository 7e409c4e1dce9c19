// Package media stores the uploaded video fragments of pending queries on
// local disk and serves them back to raters.
//
// Files live flat inside one configured folder under the names produced by
// protocol.MediaFilename. Writes go through a temporary file and a rename so
// a rater never sees a partially written fragment.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/concave-dev/prefq/internal/logging"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/dustin/go-humanize"
)

// tempPrefix marks in-flight uploads so the orphan sweep can remove them.
const tempPrefix = ".upload-"

// ErrNotFound is returned by Open for names that are not stored.
var ErrNotFound = errors.New("media not found")

// Store is a flat directory of media files.
type Store struct {
	dir string
}

// NewStore creates dir if needed and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("media directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) (string, error) {
	if _, _, err := protocol.ParseMediaFilename(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r to name, replacing any previous file of that name.
// Returns the number of bytes written.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	dst, err := s.path(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to store %s: %w", name, err)
	}

	logging.Debug("Stored media %s (%s)", name, humanize.Bytes(uint64(n)))
	return n, nil
}

// Remove deletes the named files. Missing files are not an error.
func (s *Store) Remove(names ...string) error {
	var errs []error
	for _, name := range names {
		p, err := s.path(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
			continue
		}
		logging.Debug("Removed media %s", name)
	}
	return errors.Join(errs...)
}

// Open opens a stored file for reading. The caller closes it.
func (s *Store) Open(name string) (*os.File, fs.FileInfo, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, info, nil
}

// Usage reports the number of media files and their total size.
func (s *Store) Usage() (int, uint64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, err
	}

	var (
		count int
		total uint64
	)
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		if _, _, err := protocol.ParseMediaFilename(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		total += uint64(info.Size())
	}
	return count, total, nil
}

// SweepOrphans removes media files and interrupted uploads that keep does not
// claim. A nil keep removes every media file. Files that do not follow the
// media naming convention are left alone.
func (s *Store) SweepOrphans(keep func(name string) bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read media directory %s: %w", s.dir, err)
	}

	var (
		removed int
		freed   uint64
		errs    []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		if !strings.HasPrefix(name, tempPrefix) {
			if _, _, err := protocol.ParseMediaFilename(name); err != nil {
				continue
			}
			if keep != nil && keep(name) {
				continue
			}
		}

		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
			continue
		}
		removed++
		freed += uint64(size)
	}

	if removed > 0 {
		logging.Info("Swept %d orphaned media files (%s) from %s", removed, humanize.Bytes(freed), s.dir)
	}
	return removed, errors.Join(errs...)
}
