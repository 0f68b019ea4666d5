// Package gitsnip extracts a single file's content as it existed at a
// specific point in a remote Git repository's history and caches it locally
// under a deterministic, content-addressed name. Repeated requests for the
// same (repository, reference, file path) triple skip the fetch entirely
// when the underlying commit has not changed.
//
// # Architecture
//
// The engine is built from small, separately testable pieces:
//
//  1. DeriveKey turns (url, selector, path) into a stable cache-key prefix
//     built from truncated SHA-256 digests. The prefix is independent of any
//     resolved commit.
//  2. Resolve maps a branch, tag, or commit selector to an immutable commit
//     id using only the remote's reference advertisement, with no clone and
//     no object transfer. When no selector is given, the remote's advertised
//     default branch is used.
//  3. The store subpackage keeps at most one record per prefix, named
//     {prefix}-{commit}; a record is fresh exactly when its embedded commit
//     matches the newly resolved one.
//  4. RemoteOperations.FetchCommit performs a depth-1 fetch naming the exact
//     commit and checks out its tree into an ephemeral Workspace, whose
//     lifetime is explicit (Release is called exactly once).
//  5. Extract sequences the above and reports the cached snippet's path.
//
// # Remote access
//
// All network interaction goes through the RemoteOperations interface. The
// default implementation is backed by go-git; tests supply mocks via
// WithRemoteOperations so no network access is required.
//
// # Usage
//
//	result, err := gitsnip.Extract(ctx, gitsnip.Request{
//	    RepoURL: "https://github.com/org/repo.git",
//	    Path:    "src/lib.rs",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.SnippetPath)
//
// # Errors
//
// Failures wrap one of the package sentinels (ErrConflictingSelectors,
// ErrResolve, ErrFetch, ErrFileNotFound, ErrStorage) naming the failed
// stage, and carry platform error codes from github.com/jmgilman/go/errors
// describing the underlying cause. No failure is retried internally and no
// partially written record is ever left behind.
package gitsnip
