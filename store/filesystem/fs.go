// Package filesystem backs the store interface with a local directory
// tree, emulating a hierarchical object store for development and tests.
package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
)

// Type identifies this backend in configuration.
const Type = "FILESYSTEM"

// FileStore implements store.Store over a rooted directory.
type FileStore struct {
	root string
}

// New creates a filesystem store rooted at root.
func New(root string) *FileStore {
	return &FileStore{root: root}
}

// GetStoreType returns the backend type identifier
func (fs *FileStore) GetStoreType() string {
	return Type
}

func (fs *FileStore) resolve(key string) string {
	return filepath.Join(fs.root, filepath.FromSlash(strings.TrimSuffix(key, "/")))
}

// CreateFile opens a writable file at path, creating parent directories.
func (fs *FileStore) CreateFile(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := fs.resolve(path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.New(store.ErrUnavailable, "failed to create parent directory", err).AddContext("path", path)
	}

	file, err := os.Create(target)
	if err != nil {
		return nil, errors.New(store.ErrUnavailable, "failed to create file", err).AddContext("path", path)
	}
	return file, nil
}

// ListChildren lists the immediate children of prefix. A missing
// directory yields an empty listing, matching object-store semantics.
func (fs *FileStore) ListChildren(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fs.resolve(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(store.ErrUnavailable, "failed to list directory", err).AddContext("prefix", prefix)
	}

	infos := make([]store.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			infos = append(infos, store.ObjectInfo{Name: entry.Name() + "/", IsDir: true})
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, store.ObjectInfo{Name: entry.Name(), Size: fi.Size()})
	}
	return infos, nil
}

// DeleteIfExists removes the file at path, succeeding when absent.
func (fs *FileStore) DeleteIfExists(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(fs.resolve(path)); err != nil && !os.IsNotExist(err) {
		return errors.New(store.ErrUnavailable, "failed to delete file", err).AddContext("path", path)
	}
	return nil
}

// ChildPath derives the key of segment beneath path.
func (fs *FileStore) ChildPath(path, segment string) string {
	return store.Join(path, segment)
}
