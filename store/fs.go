package store

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// isMemoryFilesystem reports whether the given filesystem is memory-based.
// Memory-based filesystems have no real paths, so advisory file locks cannot
// be taken on them.
func isMemoryFilesystem(fs billy.Filesystem) bool {
	typeName := fmt.Sprintf("%T", fs)
	return strings.Contains(strings.ToLower(typeName), "mem")
}
