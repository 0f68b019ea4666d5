package store

import "strings"

// Record is one cached snippet: a file named {prefix}-{commit} whose content
// is the bytes of the requested file at that commit. The commit embedded in
// the name is always the commit the stored bytes were read from.
type Record struct {
	// Name is the record's file name within the store directory.
	Name string

	// Path is the record's full path, suitable for reporting to callers.
	Path string

	// Prefix is the cache-key prefix the record was found under.
	Prefix string

	// Commit is the full commit id embedded in the file name.
	Commit string
}

// Fresh reports whether the record was produced from the given commit.
// A record that is not fresh is stale and must be replaced.
func (r *Record) Fresh(commit string) bool {
	return r.Commit == commit
}

// embeddedCommit recovers the commit id from a record file name: the final
// hyphen-delimited fragment. The naming scheme guarantees the commit is the
// last segment.
func embeddedCommit(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
