package testutil

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/gitsnip/gitsnip"
)

// FakeRemote is a RemoteOperations implementation backed by a local go-git
// repository instead of the network. It advertises the repository's
// references the way a real server would (symbolic HEAD, peeled tag entries)
// and materializes commit trees onto memory filesystems.
//
// Call counters let tests assert how much network interaction an operation
// would have performed.
type FakeRemote struct {
	// Repo is the repository standing in for the remote.
	Repo *gogit.Repository

	// DefaultBranch is advertised as the symbolic HEAD target.
	DefaultBranch string

	// ListCalls and FetchCalls count invocations.
	ListCalls  int
	FetchCalls int

	// LastListAuth and LastFetchAuth record the Auth passed to the most
	// recent call, so tests can assert credential threading.
	LastListAuth  gitsnip.Auth
	LastFetchAuth gitsnip.Auth

	// ListErr and FetchErr force the corresponding call to fail.
	ListErr  error
	FetchErr error
}

// NewFakeRemote wraps a repository as a fake remote advertising the given
// default branch.
func NewFakeRemote(repo *gogit.Repository, defaultBranch string) *FakeRemote {
	return &FakeRemote{
		Repo:          repo,
		DefaultBranch: defaultBranch,
	}
}

// ListRefs implements gitsnip.RemoteOperations.
func (f *FakeRemote) ListRefs(_ context.Context, _ string, auth gitsnip.Auth) ([]*plumbing.Reference, error) {
	f.ListCalls++
	f.LastListAuth = auth
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	refs := []*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(f.DefaultBranch)),
	}

	iter, err := f.Repo.References()
	if err != nil {
		return nil, err
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		refs = append(refs, ref)

		// Servers advertise annotated tags twice: the tag object itself and
		// a pre-peeled "name^{}" entry pointing at the target commit.
		if ref.Name().IsTag() {
			if tagObj, tagErr := f.Repo.TagObject(ref.Hash()); tagErr == nil {
				commit, commitErr := tagObj.Commit()
				if commitErr != nil {
					return commitErr
				}
				peeled := plumbing.ReferenceName(ref.Name().String() + "^{}")
				refs = append(refs, plumbing.NewHashReference(peeled, commit.Hash))
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return refs, nil
}

// FetchCommit implements gitsnip.RemoteOperations. The commit's tree is
// materialized onto a fresh memory filesystem; an unknown commit fails the
// way an un-advertised object would on a real server.
func (f *FakeRemote) FetchCommit(_ context.Context, _ string, commit string, opts gitsnip.FetchOptions) (*gitsnip.Workspace, error) {
	f.FetchCalls++
	f.LastFetchAuth = opts.Auth
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}

	commitObj, err := f.Repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return nil, fmt.Errorf("commit %s not reachable on remote: %w", commit, err)
	}

	fs := memfs.New()

	files, err := commitObj.Files()
	if err != nil {
		return nil, err
	}

	err = files.ForEach(func(file *object.File) error {
		content, contentErr := file.Contents()
		if contentErr != nil {
			return contentErr
		}
		return util.WriteFile(fs, file.Name, []byte(content), 0o644)
	})
	if err != nil {
		return nil, err
	}

	return gitsnip.NewWorkspace("/", fs, nil), nil
}

var _ gitsnip.RemoteOperations = (*FakeRemote)(nil)
