// Package memory provides an in-memory store backend for fast unit tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/openmirror/landingzone/store"
)

// Type identifies this backend in configuration.
const Type = "MEMORY"

// MemoryStore implements store.Store over a flat in-memory key space.
type MemoryStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// GetStoreType returns the backend type identifier
func (ms *MemoryStore) GetStoreType() string {
	return Type
}

// CreateFile returns a writer whose content becomes visible on Close.
func (ms *MemoryStore) CreateFile(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The key exists from creation time so that a zero-byte discard has
	// something to observe and delete, same as the other backends.
	ms.mu.Lock()
	ms.data[path] = nil
	ms.mu.Unlock()

	return &memoryWriteCloser{
		ms:   ms,
		path: path,
		buf:  bytes.NewBuffer(nil),
	}, nil
}

// ListChildren lists immediate children of prefix, folding deeper keys
// into directory entries.
func (ms *MemoryStore) ListChildren(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	seen := make(map[string]store.ObjectInfo)
	for key, content := range ms.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			continue
		}
		if idx := strings.Index(rest, "/"); idx != -1 {
			dir := rest[:idx+1]
			seen[dir] = store.ObjectInfo{Name: dir, IsDir: true}
			continue
		}
		seen[rest] = store.ObjectInfo{Name: rest, Size: int64(len(content))}
	}

	infos := make([]store.ObjectInfo, 0, len(seen))
	for _, info := range seen {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// DeleteIfExists removes the key at path, succeeding when absent.
func (ms *MemoryStore) DeleteIfExists(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	delete(ms.data, path)
	ms.mu.Unlock()
	return nil
}

// ChildPath derives the key of segment beneath path.
func (ms *MemoryStore) ChildPath(path, segment string) string {
	return store.Join(path, segment)
}

// ReadFile returns the content stored at path (test convenience).
func (ms *MemoryStore) ReadFile(path string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	data, ok := ms.data[path]
	return data, ok
}

// memoryWriteCloser buffers writes and commits them on Close.
type memoryWriteCloser struct {
	ms   *MemoryStore
	path string
	buf  *bytes.Buffer
}

func (mwc *memoryWriteCloser) Write(p []byte) (n int, err error) {
	return mwc.buf.Write(p)
}

func (mwc *memoryWriteCloser) Close() error {
	mwc.ms.mu.Lock()
	defer mwc.ms.mu.Unlock()

	// A concurrent delete between creation and Close wins: do not
	// resurrect the key.
	if _, ok := mwc.ms.data[mwc.path]; !ok {
		return nil
	}
	mwc.ms.data[mwc.path] = mwc.buf.Bytes()
	return nil
}
