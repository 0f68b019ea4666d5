package gitsnip_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsnip/gitsnip"
	"github.com/gitsnip/gitsnip/testutil"
)

const testRepoURL = "https://example.com/repo.git"

// extractFixture bundles a fake remote and a memory-backed store for
// orchestrator tests.
type extractFixture struct {
	repo    *testutil.FakeRemote
	storeFS billy.Filesystem
}

func newExtractFixture(t *testing.T) (*extractFixture, billy.Filesystem) {
	t.Helper()

	repo, worktree, err := testutil.NewMemoryRepo()
	require.NoError(t, err)

	return &extractFixture{
		repo:    testutil.NewFakeRemote(repo, "master"),
		storeFS: memfs.New(),
	}, worktree
}

func (f *extractFixture) extract(t *testing.T, req gitsnip.Request) (*gitsnip.Result, error) {
	t.Helper()

	return gitsnip.Extract(context.Background(), req,
		gitsnip.WithRemoteOperations(f.repo),
		gitsnip.WithStoreFilesystem(f.storeFS),
	)
}

func (f *extractFixture) storeEntries(t *testing.T) []string {
	t.Helper()

	entries, err := f.storeFS.ReadDir(".")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestExtract_FirstRunFetchesAndPersists(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	commit, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "pub fn lib() {}\n", "add lib")
	require.NoError(t, err)

	result, err := fixture.extract(t, gitsnip.Request{RepoURL: testRepoURL, Path: "src/lib.txt"})
	require.NoError(t, err)

	wantPrefix := gitsnip.DeriveKey(testRepoURL, gitsnip.SelectorBranch, "master", "src/lib.txt")
	assert.Equal(t, wantPrefix, result.Prefix)
	assert.Equal(t, commit.String(), result.Commit)
	assert.Equal(t, filepath.Join(gitsnip.DefaultStoreDir, wantPrefix+"-"+commit.String()), result.SnippetPath)
	assert.True(t, result.Refreshed)
	assert.Equal(t, 1, fixture.repo.FetchCalls)

	content, err := util.ReadFile(fixture.storeFS, wantPrefix+"-"+commit.String())
	require.NoError(t, err)
	assert.Equal(t, []byte("pub fn lib() {}\n"), content)
}

func TestExtract_CacheHitSkipsFetch(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "content", "add lib")
	require.NoError(t, err)

	req := gitsnip.Request{RepoURL: testRepoURL, Path: "src/lib.txt"}

	first, err := fixture.extract(t, req)
	require.NoError(t, err)
	require.Equal(t, 1, fixture.repo.FetchCalls)

	second, err := fixture.extract(t, req)
	require.NoError(t, err)

	assert.False(t, second.Refreshed)
	assert.Equal(t, first.SnippetPath, second.SnippetPath)
	// The upstream commit did not change, so no content was fetched again.
	assert.Equal(t, 1, fixture.repo.FetchCalls)
}

func TestExtract_StaleRecordReplaced(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "version one", "v1")
	require.NoError(t, err)

	req := gitsnip.Request{RepoURL: testRepoURL, Path: "src/lib.txt"}

	first, err := fixture.extract(t, req)
	require.NoError(t, err)

	newCommit, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "version two", "v2")
	require.NoError(t, err)

	second, err := fixture.extract(t, req)
	require.NoError(t, err)

	assert.True(t, second.Refreshed)
	assert.Equal(t, newCommit.String(), second.Commit)
	assert.Equal(t, first.Prefix, second.Prefix)
	assert.NotEqual(t, first.SnippetPath, second.SnippetPath)

	// Exactly one record remains, named with the new commit and holding the
	// new content; the old record is gone.
	names := fixture.storeEntries(t)
	require.Len(t, names, 1)
	assert.Equal(t, first.Prefix+"-"+newCommit.String(), names[0])

	content, err := util.ReadFile(fixture.storeFS, names[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("version two"), content)
}

func TestExtract_TagStaysFreshWhileBranchMoves(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	pinned, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "pinned content", "v1")
	require.NoError(t, err)
	require.NoError(t, testutil.CreateTag(fixture.repo.Repo, "v1.0.0", pinned, "Release 1.0.0"))

	req := gitsnip.Request{
		RepoURL:  testRepoURL,
		Selector: gitsnip.TagSelector("v1.0.0"),
		Path:     "src/lib.txt",
	}

	_, err = fixture.extract(t, req)
	require.NoError(t, err)
	require.Equal(t, 1, fixture.repo.FetchCalls)

	// The branch advances but the tag still points at the pinned commit.
	_, err = testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "newer content", "v2")
	require.NoError(t, err)

	result, err := fixture.extract(t, req)
	require.NoError(t, err)
	assert.False(t, result.Refreshed)
	assert.Equal(t, pinned.String(), result.Commit)
	assert.Equal(t, 1, fixture.repo.FetchCalls)
}

func TestExtract_MissingPathWritesNothing(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "README.md", "# repo", "initial")
	require.NoError(t, err)

	_, err = fixture.extract(t, gitsnip.Request{RepoURL: testRepoURL, Path: "src/absent.txt"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gitsnip.ErrFileNotFound))
	assert.NotErrorIs(t, err, gitsnip.ErrFetch)

	assert.Empty(t, fixture.storeEntries(t))
}

func TestExtract_UnreachableCommitFails(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "README.md", "# repo", "initial")
	require.NoError(t, err)

	_, err = fixture.extract(t, gitsnip.Request{
		RepoURL:  testRepoURL,
		Selector: gitsnip.CommitSelector("00000000000000000000000000000000000000aa"),
		Path:     "README.md",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gitsnip.ErrFetch))
	assert.Empty(t, fixture.storeEntries(t))
}

func TestExtract_FetchFailureLeavesExistingRecord(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "version one", "v1")
	require.NoError(t, err)

	req := gitsnip.Request{RepoURL: testRepoURL, Path: "src/lib.txt"}

	first, err := fixture.extract(t, req)
	require.NoError(t, err)

	_, err = testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "version two", "v2")
	require.NoError(t, err)
	fixture.repo.FetchErr = errors.New("connection reset")

	_, err = fixture.extract(t, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gitsnip.ErrFetch))

	// The stale record survives a failed refresh.
	names := fixture.storeEntries(t)
	require.Len(t, names, 1)
	assert.Equal(t, first.Prefix+"-"+first.Commit, names[0])
}

func TestExtract_ThreadsAuthThroughRemoteCalls(t *testing.T) {
	fixture, worktree := newExtractFixture(t)

	_, err := testutil.CommitFile(fixture.repo.Repo, worktree, "src/lib.txt", "content", "add lib")
	require.NoError(t, err)

	auth := gitsnip.BasicAuth("myuser", "ghp_mytoken")

	_, err = gitsnip.Extract(context.Background(),
		gitsnip.Request{RepoURL: testRepoURL, Path: "src/lib.txt"},
		gitsnip.WithRemoteOperations(fixture.repo),
		gitsnip.WithStoreFilesystem(fixture.storeFS),
		gitsnip.WithAuth(auth),
	)
	require.NoError(t, err)

	assert.Equal(t, auth, fixture.repo.LastListAuth)
	assert.Equal(t, auth, fixture.repo.LastFetchAuth)
}

func TestExtract_ValidatesRequest(t *testing.T) {
	fixture, _ := newExtractFixture(t)

	_, err := fixture.extract(t, gitsnip.Request{Path: "src/lib.txt"})
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))

	_, err = fixture.extract(t, gitsnip.Request{RepoURL: testRepoURL})
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(err))

	assert.Equal(t, 0, fixture.repo.ListCalls)
	assert.Equal(t, 0, fixture.repo.FetchCalls)
}
