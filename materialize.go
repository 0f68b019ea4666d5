package gitsnip

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Workspace is an ephemeral checkout of a single commit's tree, produced by
// RemoteOperations.FetchCommit.
//
// Workspace lifetime is explicit: Release must be called exactly once, by the
// success path after the requested file has been read and persisted, or by an
// error path immediately on failure. Nothing reclaims a workspace implicitly.
type Workspace struct {
	id       string
	path     string
	fs       billy.Filesystem
	cleanup  func() error
	released bool
}

// NewWorkspace wraps a checked-out tree in a Workspace. The filesystem is
// rooted at the tree; cleanup reclaims the backing storage and may be nil for
// workspaces with nothing to reclaim (in-memory trees in tests).
func NewWorkspace(path string, fs billy.Filesystem, cleanup func() error) *Workspace {
	return &Workspace{
		id:      uuid.NewString(),
		path:    path,
		fs:      fs,
		cleanup: cleanup,
	}
}

// ID returns an opaque identifier for correlating log lines about this
// workspace.
func (w *Workspace) ID() string {
	return w.id
}

// Path returns the workspace root on the backing filesystem.
func (w *Workspace) Path() string {
	return w.path
}

// ReadFile returns the exact bytes of the file at the slash-separated path
// relative to the workspace root. A missing path yields ErrFileNotFound,
// distinct from fetch failures.
func (w *Workspace) ReadFile(rel string) ([]byte, error) {
	f, err := w.fs.Open(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrFileNotFound, rel)
		}
		return nil, fmt.Errorf("failed to open %q: %w", rel, err)
	}
	defer func() {
		_ = f.Close()
	}()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", rel, err)
	}

	return content, nil
}

// Release reclaims the workspace's backing storage. Calling Release more
// than once is a no-op so error paths can release unconditionally.
func (w *Workspace) Release() error {
	if w.released {
		return nil
	}
	w.released = true

	if w.cleanup == nil {
		return nil
	}

	return w.cleanup()
}
