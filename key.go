package gitsnip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	gopath "path"
)

// shortDigestLen is the number of hex characters kept from each SHA-256 digest.
const shortDigestLen = 8

// unknownBaseName substitutes for paths with no usable final component.
const unknownBaseName = "unknown"

// hashString returns the truncated hex SHA-256 digest of the input.
func hashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:shortDigestLen]
}

// DeriveKey combines a repository URL, selector, and file path into the
// stable cache-key prefix that names snippet records.
//
// The prefix has the form
//
//	H(url)-H(kind-value)-H(path)-basename
//
// where H is a SHA-256 digest truncated to 8 hex characters and basename is
// the final component of the path ("unknown" when the path has none). The
// function is pure: identical inputs always yield identical output, across
// processes and over time. The prefix is independent of any resolved commit.
func DeriveKey(repoURL string, kind SelectorKind, value, path string) string {
	base := gopath.Base(path)
	if base == "." || base == "/" || base == "" {
		base = unknownBaseName
	}

	return fmt.Sprintf("%s-%s-%s-%s",
		hashString(repoURL),
		hashString(string(kind)+"-"+value),
		hashString(path),
		base,
	)
}
