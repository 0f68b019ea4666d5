package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/gofrs/flock"
)

const (
	// lockFileName is the advisory lock file kept inside the store directory.
	lockFileName = ".lock"

	// tmpSuffix marks in-progress writes awaiting their rename into place.
	tmpSuffix = ".tmp"
)

// Store is a directory of immutable, key-named snippet records.
//
// By default the store uses the local OS filesystem rooted at its directory
// and serializes mutations with an advisory lock file. A custom filesystem
// (for testing with memfs) can be provided via WithFilesystem; locking stays
// active for disk-backed filesystems and is disabled only for memory-based
// ones, where no lockable path exists.
type Store struct {
	dir     string
	fs      billy.Filesystem
	locking bool
}

// New creates a Store over the given directory. The directory is not created
// until the first write; lookups against a missing directory simply find
// nothing.
//
// Example:
//
//	st := store.New(".snippets")
//
//	// With custom filesystem (for testing)
//	st := store.New(".snippets", store.WithFilesystem(memfs.New()))
func New(dir string, opts ...Option) *Store {
	options := &storeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	fs := options.fs
	if fs == nil {
		fs = osfs.New(dir)
	}

	return &Store{
		dir:     dir,
		fs:      fs,
		locking: !isMemoryFilesystem(fs),
	}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Lock takes an exclusive advisory lock covering the store directory and
// returns the corresponding unlock function. Callers hold the lock across a
// whole lookup-and-replace sequence so concurrent invocations targeting the
// same prefix cannot observe a removed-but-not-yet-replaced record.
//
// Stores on memory filesystems return a no-op unlock.
func (s *Store) Lock() (func() error, error) {
	if !s.locking {
		return func() error { return nil }, nil
	}

	root := s.fs.Root()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock store directory: %w", err)
	}

	return lock.Unlock, nil
}

// FindByPrefix scans the store for the record whose name starts with the
// given prefix. At most one such record exists at any time. A missing store
// directory finds nothing rather than failing.
func (s *Store) FindByPrefix(prefix string) (*Record, error) {
	entries, err := s.fs.ReadDir(".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == lockFileName || strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		if !strings.HasPrefix(name, prefix+"-") {
			continue
		}

		return &Record{
			Name:   name,
			Path:   filepath.Join(s.dir, name),
			Prefix: prefix,
			Commit: embeddedCommit(name),
		}, nil
	}

	return nil, nil
}

// Put writes a new record for the prefix at the given commit, creating the
// store directory if needed. Content is written to a temporary name and
// renamed into place so readers never see a record whose name and content
// disagree.
func (s *Store) Put(prefix, commit string, content []byte) (*Record, error) {
	name := prefix + "-" + commit
	tmpName := name + tmpSuffix

	if err := util.WriteFile(s.fs, tmpName, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write record: %w", err)
	}

	if err := s.fs.Rename(tmpName, name); err != nil {
		_ = s.fs.Remove(tmpName)
		return nil, fmt.Errorf("failed to publish record: %w", err)
	}

	return &Record{
		Name:   name,
		Path:   filepath.Join(s.dir, name),
		Prefix: prefix,
		Commit: commit,
	}, nil
}

// Remove deletes a record if it is still present. Removing a record that is
// already gone is not an error.
func (s *Store) Remove(rec *Record) error {
	err := s.fs.Remove(rec.Name)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove record %s: %w", rec.Name, err)
	}

	return nil
}
