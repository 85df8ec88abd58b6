package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreCreateAndList(t *testing.T) {
	fs := New(t.TempDir())
	ctx := context.Background()

	f, err := fs.CreateFile(ctx, "db/Files/LandingZone/t/00000000000000000001.parquet")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	children, err := fs.ListChildren(ctx, "db/Files/LandingZone/t/")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "00000000000000000001.parquet", children[0].Name)
	assert.Equal(t, int64(5), children[0].Size)
	assert.False(t, children[0].IsDir)
}

func TestFileStoreListIncludesSubfolders(t *testing.T) {
	fs := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{
		"db/t/_metadata.json",
		"db/t/_ProcessedFiles/00000000000000000001.parquet",
	} {
		f, err := fs.CreateFile(ctx, key)
		require.NoError(t, err)
		_, err = f.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	children, err := fs.ListChildren(ctx, "db/t/")
	require.NoError(t, err)
	require.Len(t, children, 2)

	names := map[string]bool{}
	for _, c := range children {
		names[c.Name] = c.IsDir
	}
	assert.True(t, names["_ProcessedFiles/"])
	assert.False(t, names["_metadata.json"])
}

func TestFileStoreListMissingPrefixIsEmpty(t *testing.T) {
	fs := New(t.TempDir())

	children, err := fs.ListChildren(context.Background(), "nope/nothing/")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestFileStoreDeleteIfExists(t *testing.T) {
	root := t.TempDir()
	fs := New(root)
	ctx := context.Background()

	f, err := fs.CreateFile(ctx, "db/t/file.parquet")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, fs.DeleteIfExists(ctx, "db/t/file.parquet"))
	_, err = os.Stat(filepath.Join(root, "db", "t", "file.parquet"))
	assert.True(t, os.IsNotExist(err))

	// Absent object deletes silently.
	assert.NoError(t, fs.DeleteIfExists(ctx, "db/t/file.parquet"))
}

func TestFileStoreChildPath(t *testing.T) {
	fs := New(t.TempDir())

	assert.Equal(t, "db/t/_ProcessedFiles", fs.ChildPath("db/t/", "_ProcessedFiles"))
	assert.Equal(t, "db/t/a.parquet", fs.ChildPath("db/t", "a.parquet"))
}

func TestFileStoreCancelledContext(t *testing.T) {
	fs := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.CreateFile(ctx, "db/t/x")
	assert.Error(t, err)
	_, err = fs.ListChildren(ctx, "db/t/")
	assert.Error(t, err)
}
