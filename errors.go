package gitsnip

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	platformerrors "github.com/jmgilman/go/errors"
)

// Stage sentinels. Every error returned by this package wraps exactly one of
// these, so callers can tell which stage of an extraction failed with
// errors.Is, independently of the underlying cause.
var (
	// ErrConflictingSelectors indicates more than one of branch, tag, and
	// commit hash was supplied.
	ErrConflictingSelectors = errors.New("only one of branch, tag, or commit hash may be specified")

	// ErrResolve indicates a selector could not be resolved to a commit id.
	ErrResolve = errors.New("reference resolution failed")

	// ErrFetch indicates the commit object transfer from the remote failed.
	ErrFetch = errors.New("commit fetch failed")

	// ErrFileNotFound indicates the requested path is absent from the
	// resolved commit's tree. It is distinct from ErrFetch so callers can
	// tell a bad ref from a bad path.
	ErrFileNotFound = errors.New("file not found in commit tree")

	// ErrStorage indicates a snippet store read or write failed.
	ErrStorage = errors.New("snippet storage failed")
)

// validationError wraps a pre-flight input error with the platform
// invalid-input code.
func validationError(err error) error {
	return fmt.Errorf("validation failed: %w",
		platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "invalid request"))
}

// resolveError marks err as a resolution failure for the given selector.
func resolveError(err error, sel Selector) error {
	return fmt.Errorf("%w: selector %s: %w", ErrResolve, sel, classifyError(err))
}

// fetchError marks err as a commit fetch failure.
func fetchError(err error, commit string) error {
	return fmt.Errorf("%w: commit %s: %w", ErrFetch, commit, classifyError(err))
}

// storageError marks err as a snippet store failure.
func storageError(err error, context string) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, context, err)
}

// classifyError maps go-git errors to platform error types.
// It uses errors.Is() to match go-git error types and returns the
// appropriate platform error code. Unknown errors are passed through
// unchanged to preserve their original information.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	// Remote repository missing or empty → ErrNotFound
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "repository not found")
	}
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "remote repository is empty")
	}

	// Reference not advertised by the remote → ErrNotFound
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "reference not found")
	}
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "object not found")
	}

	// Authentication/Authorization errors → ErrUnauthorized
	if errors.Is(err, transport.ErrAuthenticationRequired) {
		return platformerrors.Wrap(err, platformerrors.CodeUnauthorized, "authentication required")
	}
	if errors.Is(err, transport.ErrAuthorizationFailed) {
		return platformerrors.Wrap(err, platformerrors.CodeUnauthorized, "authorization failed")
	}

	// Invalid input errors → ErrInvalidInput
	if errors.Is(err, gogit.ErrMissingURL) {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "URL is required")
	}

	// Pass through unknown errors unchanged to preserve original information
	return err
}
