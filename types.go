package gitsnip

import (
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"
)

// SelectorKind identifies which kind of Git reference a Selector names.
type SelectorKind string

const (
	// SelectorBranch selects the tip commit of a branch.
	SelectorBranch SelectorKind = "branch"

	// SelectorTag selects the commit an annotated or lightweight tag points to.
	SelectorTag SelectorKind = "tag"

	// SelectorCommit selects an explicit commit by its full hash.
	SelectorCommit SelectorKind = "commit"
)

// Selector is the caller's choice of branch, tag, or explicit commit hash.
// The zero value selects the remote's default branch; the concrete branch
// name is filled in during resolution.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// NewSelector builds a Selector from the caller-supplied branch, tag, and
// commit hash values. At most one of the three may be non-empty; supplying
// more than one returns ErrConflictingSelectors before any network activity.
// Supplying none yields the default-branch selector.
//
// Example:
//
//	sel, err := gitsnip.NewSelector("", "v1.2.0", "")
func NewSelector(branch, tag, commit string) (Selector, error) {
	supplied := 0
	for _, v := range []string{branch, tag, commit} {
		if v != "" {
			supplied++
		}
	}
	if supplied > 1 {
		return Selector{}, validationError(ErrConflictingSelectors)
	}

	switch {
	case branch != "":
		return BranchSelector(branch), nil
	case tag != "":
		return TagSelector(tag), nil
	case commit != "":
		return CommitSelector(commit), nil
	default:
		return Selector{}, nil
	}
}

// BranchSelector returns a Selector for the named branch.
func BranchSelector(name string) Selector {
	return Selector{Kind: SelectorBranch, Value: name}
}

// TagSelector returns a Selector for the named tag.
func TagSelector(name string) Selector {
	return Selector{Kind: SelectorTag, Value: name}
}

// CommitSelector returns a Selector for an explicit commit hash.
// The hash is not validated here; malformed hashes fail during resolution.
func CommitSelector(sha string) Selector {
	return Selector{Kind: SelectorCommit, Value: sha}
}

// IsDefault reports whether this selector targets the remote's default branch.
func (s Selector) IsDefault() bool {
	return s.Kind == "" && s.Value == ""
}

// String renders the selector in "kind:value" form for logs and errors.
func (s Selector) String() string {
	if s.IsDefault() {
		return "default-branch"
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.Value)
}

// Resolution is the outcome of resolving a Selector against a remote.
// Commit is the full-length hex commit id the selector mapped to at
// resolution time. Selector is the effective selector: for default-branch
// requests it carries the branch name the remote advertised.
type Resolution struct {
	Commit   string
	Selector Selector
}

// Request names a single file at a point in a remote repository's history.
type Request struct {
	// RepoURL is the remote repository URL (HTTPS or SSH).
	RepoURL string

	// Selector chooses the branch, tag, or commit. The zero value selects
	// the remote's default branch.
	Selector Selector

	// Path is the slash-separated path of the file, relative to the
	// repository root.
	Path string
}

// Result describes the cached snippet produced by Extract.
type Result struct {
	// SnippetPath is the path of the cached snippet file.
	SnippetPath string

	// Commit is the full commit id the snippet content was read from.
	Commit string

	// Prefix is the derived cache key covering (url, selector, path).
	Prefix string

	// Selector is the effective selector after resolution.
	Selector Selector

	// Refreshed is false when an up-to-date cached record was returned
	// without fetching any repository content.
	Refreshed bool
}

// Auth is an interface for authentication methods.
// It is satisfied by go-git's transport.AuthMethod.
type Auth interface {
	// Marker interface - satisfied by go-git transport.AuthMethod
}

// FetchOptions configures a single-commit fetch performed by RemoteOperations.
type FetchOptions struct {
	// Auth is the authentication to use, or nil for anonymous access.
	Auth Auth

	// WorkspaceDir is the parent directory for the ephemeral workspace.
	// Empty means the operating system's default temporary directory.
	WorkspaceDir string
}

// Option configures Extract and Resolve operations.
type Option func(*options)

type options struct {
	storeDir     string
	storeFS      billy.Filesystem
	workspaceDir string
	remoteOps    RemoteOperations
	auth         Auth
	logger       logrus.FieldLogger
}

// DefaultStoreDir is the snippet directory used when WithStoreDir is not given.
const DefaultStoreDir = ".snippets"

func defaultOptions() *options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &options{
		storeDir:  DefaultStoreDir,
		remoteOps: &defaultRemoteOps{},
		logger:    discard,
	}
}

// WithStoreDir sets the directory holding cached snippet records.
// Defaults to ".snippets" relative to the working directory.
//
// Example:
//
//	result, err := gitsnip.Extract(ctx, req, gitsnip.WithStoreDir("/var/cache/snippets"))
func WithStoreDir(dir string) Option {
	return func(opts *options) {
		opts.storeDir = dir
	}
}

// WithStoreFilesystem sets the billy filesystem backing the snippet store.
// If not provided, the store uses the local OS filesystem rooted at the
// store directory. This option is primarily useful for testing with memfs.
func WithStoreFilesystem(fs billy.Filesystem) Option {
	return func(opts *options) {
		opts.storeFS = fs
	}
}

// WithWorkspaceDir sets the parent directory for ephemeral fetch workspaces.
// Defaults to the operating system's temporary directory.
func WithWorkspaceDir(dir string) Option {
	return func(opts *options) {
		opts.workspaceDir = dir
	}
}

// WithRemoteOperations sets the RemoteOperations implementation used for
// network access. If not provided, defaults to the internal implementation
// backed by go-git.
//
// This option is primarily useful for testing, allowing consumers to mock
// network operations without actual network calls.
//
// Example:
//
//	result, err := gitsnip.Extract(ctx, req, gitsnip.WithRemoteOperations(fake))
func WithRemoteOperations(ops RemoteOperations) Option {
	return func(opts *options) {
		opts.remoteOps = ops
	}
}

// WithAuth sets authentication for remote operations.
//
// Example:
//
//	auth, _ := gitsnip.SSHKeyFile("git", "~/.ssh/id_rsa")
//	result, err := gitsnip.Extract(ctx, req, gitsnip.WithAuth(auth))
func WithAuth(auth Auth) Option {
	return func(opts *options) {
		opts.auth = auth
	}
}

// WithLogger sets the structured logger used to report stage progress.
// By default all log output is discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
