package gitsnip

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// peeledSuffix marks the pre-peeled advertisement of an annotated tag.
const peeledSuffix = "^{}"

// Resolve maps a Selector to the concrete, immutable commit id it points to
// at this moment, using at most one reference-listing round trip and no
// object transfer.
//
// Commit-hash selectors resolve locally: the hash is validated as well-formed
// hex but its existence on the remote is only confirmed later, at fetch time.
// Branch and tag selectors are looked up in the remote's reference
// advertisement; annotated tags are peeled to their target commit. The
// default-branch selector first reads the advertised symbolic HEAD and then
// resolves the named branch from the same advertisement.
//
// The returned Resolution carries the effective selector: for default-branch
// requests this is the branch selector for the remote's advertised default.
func Resolve(ctx context.Context, ops RemoteOperations, url string, sel Selector, auth Auth) (Resolution, error) {
	if url == "" {
		return Resolution{}, resolveError(fmt.Errorf("repository URL is required"), sel)
	}

	// Explicit commit hashes are taken as authoritative without contacting
	// the remote. Existence is checked lazily during materialization.
	if sel.Kind == SelectorCommit {
		sha := strings.ToLower(sel.Value)
		if !plumbing.IsHash(sha) {
			return Resolution{}, resolveError(fmt.Errorf("malformed commit hash %q", sel.Value), sel)
		}
		return Resolution{Commit: sha, Selector: CommitSelector(sha)}, nil
	}

	refs, err := ops.ListRefs(ctx, url, auth)
	if err != nil {
		return Resolution{}, resolveError(err, sel)
	}

	effective := sel
	if sel.IsDefault() {
		name, err := defaultBranch(refs)
		if err != nil {
			return Resolution{}, resolveError(err, sel)
		}
		effective = BranchSelector(name)
	}

	var refName plumbing.ReferenceName
	switch effective.Kind {
	case SelectorBranch:
		refName = plumbing.NewBranchReferenceName(effective.Value)
	case SelectorTag:
		refName = plumbing.NewTagReferenceName(effective.Value)
	default:
		return Resolution{}, resolveError(fmt.Errorf("unsupported selector kind %q", effective.Kind), sel)
	}

	hash, err := peelReference(refs, refName)
	if err != nil {
		return Resolution{}, resolveError(err, effective)
	}

	return Resolution{Commit: hash.String(), Selector: effective}, nil
}

// defaultBranch extracts the remote's default branch name from the advertised
// symbolic HEAD, stripping the refs/heads/ namespace prefix.
func defaultBranch(refs []*plumbing.Reference) (string, error) {
	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference {
			target := ref.Target().String()
			return strings.TrimPrefix(target, "refs/heads/"), nil
		}
	}

	return "", fmt.Errorf("remote did not advertise a default branch: %w", plumbing.ErrReferenceNotFound)
}

// peelReference finds the named reference in an advertisement and peels it to
// a commit hash. For annotated tags the server advertises a pre-peeled
// "name^{}" entry pointing at the target commit; lightweight tags and
// branches point at the commit directly.
func peelReference(refs []*plumbing.Reference, name plumbing.ReferenceName) (plumbing.Hash, error) {
	var direct *plumbing.Reference

	for _, ref := range refs {
		switch ref.Name() {
		case name + peeledSuffix:
			return ref.Hash(), nil
		case name:
			direct = ref
		}
	}

	if direct == nil {
		return plumbing.ZeroHash, fmt.Errorf("%q: %w", name.String(), plumbing.ErrReferenceNotFound)
	}

	return direct.Hash(), nil
}
