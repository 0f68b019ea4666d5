// Package testutil provides in-memory testing utilities for gitsnip.
// It includes helpers for building go-git repositories on a memory
// filesystem and a fake RemoteOperations implementation, so tests run
// without network or disk access.
package testutil

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Standard author identity used for all test commits and tags.
const (
	TestAuthor = "Test User"
	TestEmail  = "test@example.com"
)

// NewMemoryRepo creates an in-memory Git repository whose worktree lives on
// a billy memory filesystem. The returned filesystem is used to stage files
// for CommitFile.
func NewMemoryRepo() (*gogit.Repository, billy.Filesystem, error) {
	fs := memfs.New()

	repo, err := gogit.Init(memory.NewStorage(), fs)
	if err != nil {
		return nil, nil, err
	}

	return repo, fs, nil
}

// CommitFile writes a file into the repository's worktree filesystem, stages
// it, and commits it, returning the commit hash.
func CommitFile(repo *gogit.Repository, fs billy.Filesystem, path, content, message string) (plumbing.Hash, error) {
	file, err := fs.Create(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := file.Write([]byte(content)); err != nil {
		_ = file.Close()
		return plumbing.ZeroHash, err
	}
	if err := file.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := wt.Add(path); err != nil {
		return plumbing.ZeroHash, err
	}

	return wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  TestAuthor,
			Email: TestEmail,
			When:  time.Now(),
		},
	})
}

// CreateTag tags the given commit. A non-empty message creates an annotated
// tag object; an empty message creates a lightweight tag.
func CreateTag(repo *gogit.Repository, name string, hash plumbing.Hash, message string) error {
	var opts *gogit.CreateTagOptions
	if message != "" {
		opts = &gogit.CreateTagOptions{
			Message: message,
			Tagger: &object.Signature{
				Name:  TestAuthor,
				Email: TestEmail,
				When:  time.Now(),
			},
		}
	}

	_, err := repo.CreateTag(name, hash, opts)
	return err
}

// CreateBranch points a new branch at the given commit.
func CreateBranch(repo *gogit.Repository, name string, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	return repo.Storer.SetReference(ref)
}
