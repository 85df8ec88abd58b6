package mirror

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
	"github.com/openmirror/landingzone/store/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*Writer, *memory.MemoryStore) {
	t.Helper()
	ms := memory.New()
	return NewWriter(ms, nil, zerolog.Nop()), ms
}

// commitFile writes content into the next data file and closes it.
func commitFile(t *testing.T, w *Writer, id TableID, content string) *PendingDataFile {
	t.Helper()
	ctx := context.Background()

	pending, err := w.CreateNextTableDataFile(ctx, id)
	require.NoError(t, err)
	require.NoError(t, pending.WriteData(func(dst io.Writer) error {
		_, err := dst.Write([]byte(content))
		return err
	}))
	require.NoError(t, pending.Close(ctx))
	return pending
}

func TestCreateTableMetadataRoundTrip(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "SalesDB", "Orders")

	require.NoError(t, w.CreateTable(context.Background(), id, "k1", "k2"))

	data, ok := ms.ReadFile("SalesDB/Files/LandingZone/Orders/_metadata.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"keyColumns":["k1","k2"]}`, string(data))
}

func TestCreateTableRequiresKeyColumns(t *testing.T) {
	w, _ := newTestWriter(t)
	id := NewTableID("ws", "db", "t")

	err := w.CreateTable(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidMetadata))
}

func TestCreateTableOverwritesDescriptor(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "a"))
	require.NoError(t, w.CreateTable(ctx, id, "b", "c"))

	data, ok := ms.ReadFile(id.MetadataPath())
	require.True(t, ok)
	assert.JSONEq(t, `{"keyColumns":["b","c"]}`, string(data))
}

func TestSequenceMonotonicity(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))

	for i := 1; i <= 5; i++ {
		pending := commitFile(t, w, id, fmt.Sprintf("rows-%d", i))
		assert.Equal(t, uint64(i), pending.SequenceNumber())
	}

	for i := 1; i <= 5; i++ {
		path := fmt.Sprintf("%s%020d.parquet", id.Prefix(), i)
		_, ok := ms.ReadFile(path)
		assert.True(t, ok, "expected committed file at sequence %d", i)
	}
}

func TestGapToleranceAfterExternalDeletion(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))
	commitFile(t, w, id, "one")
	commitFile(t, w, id, "two")
	commitFile(t, w, id, "three")

	// Out-of-band deletion of sequence 2 must not cause its reuse.
	require.NoError(t, ms.DeleteIfExists(ctx, fmt.Sprintf("%s%020d.parquet", id.Prefix(), 2)))

	next, err := w.NextSequenceNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), next)
}

func TestZeroByteDiscard(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))

	pending, err := w.CreateNextTableDataFile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pending.SequenceNumber())
	require.NoError(t, pending.Close(ctx))

	// No new object in the table folder.
	children, err := ms.ListChildren(ctx, id.Prefix())
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, MetadataFileName, children[0].Name)

	// The abandoned number is handed out again.
	next, err := w.NextSequenceNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)
}

func TestDiscardAfterFailedCallback(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))

	pending, err := w.CreateNextTableDataFile(ctx, id)
	require.NoError(t, err)

	err = pending.WriteData(func(io.Writer) error {
		return fmt.Errorf("upstream source failed")
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrWriteFailed))

	require.NoError(t, pending.Close(ctx))

	children, err := ms.ListChildren(ctx, id.Prefix())
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestCreateNextTableDataFileTableNotFound(t *testing.T) {
	w, _ := newTestWriter(t)
	id := NewTableID("ws", "db", "missing")

	_, err := w.CreateNextTableDataFile(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), "Table not found")
}

func TestNextSequenceNumberEmptyTable(t *testing.T) {
	w, _ := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))

	next, err := w.NextSequenceNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)
}

func TestSequenceScanIgnoresRetentionFoldersAndStrays(t *testing.T) {
	w, ms := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))
	commitFile(t, w, id, "one")

	// Consumed copies under the retention folders carry numeric names
	// too; they must not influence allocation in the main folder.
	seedObject(t, ms, id.Prefix()+ProcessedFilesFolder+"/"+fmt.Sprintf("%020d.parquet", 90))
	seedObject(t, ms, id.Prefix()+FilesReadyToDeleteFolder+"/"+fmt.Sprintf("%020d.parquet", 91))
	seedObject(t, ms, id.Prefix()+"not-a-number.txt")

	next, err := w.NextSequenceNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}

func TestTableExists(t *testing.T) {
	w, _ := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	exists, err := w.TableExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, w.CreateTable(ctx, id, "k"))

	exists, err = w.TableExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCustomFileExtension(t *testing.T) {
	ms := memory.New()
	w := NewWriter(ms, &WriterConfig{FileExtension: ".csv"}, zerolog.Nop())
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))
	pending := commitFile(t, w, id, "a,b\n")

	assert.Equal(t, id.Prefix()+fmt.Sprintf("%020d.csv", 1), pending.Path())
}

func TestDiscardDeleteFailureSurfaces(t *testing.T) {
	ms := memory.New()
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	target := fmt.Sprintf("%s%020d.parquet", id.Prefix(), 1)
	w := NewWriter(&failingDeleteStore{Store: ms, failing: map[string]bool{target: true}}, nil, zerolog.Nop())

	require.NoError(t, w.CreateTable(ctx, id, "k"))
	pending, err := w.CreateNextTableDataFile(ctx, id)
	require.NoError(t, err)

	err = pending.Close(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrDiscardFailed))
	assert.True(t, errors.HasCode(err, store.ErrUnavailable))

	// The orphaned empty object is still visible to the caller.
	_, ok := ms.ReadFile(target)
	assert.True(t, ok)
}

func TestWriteDataAfterCloseFails(t *testing.T) {
	w, _ := newTestWriter(t)
	id := NewTableID("ws", "db", "t")
	ctx := context.Background()

	require.NoError(t, w.CreateTable(ctx, id, "k"))
	pending, err := w.CreateNextTableDataFile(ctx, id)
	require.NoError(t, err)
	require.NoError(t, pending.Close(ctx))

	err = pending.WriteData(func(io.Writer) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrFileClosed))

	// Close is idempotent.
	assert.NoError(t, pending.Close(ctx))
}

func seedObject(t *testing.T, ms *memory.MemoryStore, path string) {
	t.Helper()
	f, err := ms.CreateFile(context.Background(), path)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
