package gitsnip

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gitcache "github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RemoteOperations defines the interface for Git remote network operations.
// It is the only seam through which this package touches the network, which
// allows tests to supply mock implementations.
//
// The default implementation delegates to go-git. ListRefs performs a
// reference advertisement only (the ls-remote handshake) and transfers no
// object data; FetchCommit transfers exactly the object graph of one commit.
type RemoteOperations interface {
	// ListRefs returns the references the remote advertises, including the
	// symbolic HEAD and peeled ("^{}") entries for annotated tags.
	ListRefs(ctx context.Context, url string, auth Auth) ([]*plumbing.Reference, error)

	// FetchCommit materializes the tree of a single commit into an
	// ephemeral workspace using a depth-limited fetch that names the exact
	// commit. The caller owns the returned workspace and must release it
	// exactly once.
	FetchCommit(ctx context.Context, url, commit string, opts FetchOptions) (*Workspace, error)
}

// defaultRemoteOps is the default implementation of RemoteOperations backed
// by go-git's network operations.
type defaultRemoteOps struct{}

// snippetRefSpec is the local ref the fetched commit is pinned under so the
// server treats it as a want.
const snippetRefSpec = "refs/heads/snippet"

// ListRefs implements RemoteOperations.ListRefs with an anonymous in-memory
// remote, mirroring `git ls-remote`. No repository objects are downloaded.
func (d *defaultRemoteOps) ListRefs(ctx context.Context, url string, auth Auth) ([]*plumbing.Reference, error) {
	method, err := authMethod(auth)
	if err != nil {
		return nil, err
	}

	remote := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{
		Auth:          method,
		PeelingOption: gogit.AppendPeeled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote references: %w", err)
	}

	return refs, nil
}

// FetchCommit implements RemoteOperations.FetchCommit.
//
// It initializes an empty repository in a fresh temporary directory, fetches
// only the named commit at depth 1, and checks out that commit's tree. The
// full history is never downloaded. On any failure the workspace directory
// is removed before returning; on success the caller releases it.
func (d *defaultRemoteOps) FetchCommit(ctx context.Context, url, commit string, opts FetchOptions) (*Workspace, error) {
	method, err := authMethod(opts.Auth)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(opts.WorkspaceDir, "gitsnip-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	ws, err := d.fetchInto(ctx, dir, url, commit, method)
	if err != nil {
		// Error path: reclaim the workspace immediately.
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return ws, nil
}

func (d *defaultRemoteOps) fetchInto(
	ctx context.Context,
	dir, url, commit string,
	auth transport.AuthMethod,
) (*Workspace, error) {
	fs := osfs.New(dir)

	dotGitFs, err := fs.Chroot(".git")
	if err != nil {
		return nil, fmt.Errorf("failed to create .git filesystem: %w", err)
	}

	storage := filesystem.NewStorage(dotGitFs, gitcache.NewObjectLRUDefault())

	repo, err := gogit.Init(storage, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize workspace repository: %w", err)
	}

	remote, err := repo.CreateRemoteAnonymous(&config.RemoteConfig{
		Name: "anonymous",
		URLs: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create anonymous remote: %w", err)
	}

	fetchOpts := &gogit.FetchOptions{
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("+%s:%s", commit, snippetRefSpec)),
		},
		Depth: 1,
		Tags:  gogit.NoTags,
	}
	if auth != nil {
		fetchOpts.Auth = auth
	}

	if err := remote.FetchContext(ctx, fetchOpts); err != nil {
		return nil, fmt.Errorf("failed to fetch commit %s: %w", commit, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Hash: plumbing.NewHash(commit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to checkout commit %s: %w", commit, err)
	}

	return NewWorkspace(dir, fs, func() error {
		return os.RemoveAll(dir)
	}), nil
}
