package store

import (
	"context"
	"io"
	"strings"
)

// ObjectInfo describes a single immediate child of a listed prefix.
// Name is relative to the prefix. IsDir marks subfolders (common
// prefixes on flat object stores).
type ObjectInfo struct {
	Name  string
	Size  int64
	IsDir bool
}

// Store is the capability surface the mirror core needs from a
// hierarchical object store. Paths are forward-slash separated keys;
// prefixes end with a slash. No backend is assumed to support atomic
// rename: a file is committed simply by existing with nonzero length.
type Store interface {
	// CreateFile opens a writable stream at path, creating parent
	// segments as needed. Content becomes visible no later than Close.
	CreateFile(ctx context.Context, path string) (io.WriteCloser, error)

	// ListChildren returns the immediate children of prefix,
	// non-recursively. A prefix with no objects beneath it yields an
	// empty listing, not an error.
	ListChildren(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// DeleteIfExists removes the object at path, succeeding silently
	// when it is absent.
	DeleteIfExists(ctx context.Context, path string) error

	// ChildPath derives the key of a child segment beneath path.
	ChildPath(path, segment string) string
}

// Join composes slash-separated store keys, preserving a trailing
// slash on the final segment.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	joined := strings.Join(parts, "/")
	if n := len(segments); n > 0 && strings.HasSuffix(segments[n-1], "/") {
		joined += "/"
	}
	return joined
}
