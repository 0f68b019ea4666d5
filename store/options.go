package store

import "github.com/go-git/go-billy/v5"

// Option configures Store creation.
type Option func(*storeOptions)

type storeOptions struct {
	fs billy.Filesystem
}

// WithFilesystem sets the billy filesystem backing the store. Records live at
// the filesystem root; the store directory is used only for reported record
// paths. Advisory locking is disabled for memory-based filesystems, which
// have no lockable path.
//
// Example:
//
//	st := store.New(".snippets", store.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) Option {
	return func(opts *storeOptions) {
		opts.fs = fs
	}
}
