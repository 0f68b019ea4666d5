package testutil

import (
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitFile(t *testing.T) {
	repo, fs, err := NewMemoryRepo()
	require.NoError(t, err)

	hash, err := CommitFile(repo, fs, "dir/file.txt", "hello", "initial")
	require.NoError(t, err)
	assert.NotEqual(t, plumbing.ZeroHash, hash)

	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)
	assert.Equal(t, "initial", commit.Message)
	assert.Equal(t, TestAuthor, commit.Author.Name)

	content, err := util.ReadFile(fs, "dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestCreateTag(t *testing.T) {
	repo, fs, err := NewMemoryRepo()
	require.NoError(t, err)

	hash, err := CommitFile(repo, fs, "file.txt", "content", "initial")
	require.NoError(t, err)

	require.NoError(t, CreateTag(repo, "annotated", hash, "release"))
	require.NoError(t, CreateTag(repo, "lightweight", hash, ""))

	annotated, err := repo.Tag("annotated")
	require.NoError(t, err)
	// Annotated tags point at a tag object, not the commit itself.
	assert.NotEqual(t, hash, annotated.Hash())
	tagObj, err := repo.TagObject(annotated.Hash())
	require.NoError(t, err)
	assert.Equal(t, hash, tagObj.Target)

	lightweight, err := repo.Tag("lightweight")
	require.NoError(t, err)
	assert.Equal(t, hash, lightweight.Hash())
}

func TestCreateBranch(t *testing.T) {
	repo, fs, err := NewMemoryRepo()
	require.NoError(t, err)

	hash, err := CommitFile(repo, fs, "file.txt", "content", "initial")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(repo, "develop", hash))

	ref, err := repo.Reference(plumbing.NewBranchReferenceName("develop"), false)
	require.NoError(t, err)
	assert.Equal(t, hash, ref.Hash())
}
