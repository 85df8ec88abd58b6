package mirror

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/openmirror/landingzone/store"
	"github.com/openmirror/landingzone/store/filesystem"
	"github.com/openmirror/landingzone/store/memory"
	"github.com/openmirror/landingzone/store/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProtocolAcrossBackends runs the full write/cleanup protocol on
// every store backend to keep their semantics interchangeable.
func TestProtocolAcrossBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) store.Store{
		"memory": func(t *testing.T) store.Store {
			return memory.New()
		},
		"filesystem": func(t *testing.T) store.Store {
			return filesystem.New(t.TempDir())
		},
		"s3": func(t *testing.T) store.Store {
			backend := s3mem.New()
			require.NoError(t, backend.CreateBucket("landing"))
			ts := httptest.NewServer(gofakes3.New(backend).Server())
			t.Cleanup(ts.Close)

			st, err := s3.New(s3.Config{
				Endpoint:  strings.TrimPrefix(ts.URL, "http://"),
				Bucket:    "landing",
				Region:    "us-east-1",
				AccessKey: "TEST-ACCESSKEY",
				SecretKey: "TEST-SECRETKEY",
			})
			require.NoError(t, err)
			return st
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			w := NewWriter(st, nil, zerolog.Nop())
			j := NewJanitor(st, zerolog.Nop())
			id := NewTableIDWithSchema("ws", "SalesDB", "dbo", "Orders")
			ctx := context.Background()

			// Writing before the table exists fails terminally.
			_, err := w.CreateNextTableDataFile(ctx, id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Table not found")

			require.NoError(t, w.CreateTable(ctx, id, "OrderID"))

			// Two committed files, one discarded in between.
			first, err := w.CreateNextTableDataFile(ctx, id)
			require.NoError(t, err)
			require.NoError(t, first.WriteData(func(dst io.Writer) error {
				_, err := dst.Write([]byte("batch-1"))
				return err
			}))
			require.NoError(t, first.Close(ctx))
			assert.Equal(t, uint64(1), first.SequenceNumber())

			discarded, err := w.CreateNextTableDataFile(ctx, id)
			require.NoError(t, err)
			require.NoError(t, discarded.Close(ctx))
			assert.Equal(t, uint64(2), discarded.SequenceNumber())

			second, err := w.CreateNextTableDataFile(ctx, id)
			require.NoError(t, err)
			require.NoError(t, second.WriteData(func(dst io.Writer) error {
				_, err := dst.Write([]byte("batch-2"))
				return err
			}))
			require.NoError(t, second.Close(ctx))

			// The discarded number was reallocated.
			assert.Equal(t, uint64(2), second.SequenceNumber())

			next, err := w.NextSequenceNumber(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), next)

			// Cleanup leaves the live files alone.
			require.NoError(t, j.CleanUpTable(ctx, id))
			children, err := st.ListChildren(ctx, id.Prefix())
			require.NoError(t, err)

			var files int
			for _, c := range children {
				if !c.IsDir {
					files++
				}
			}
			assert.Equal(t, 3, files) // metadata + two data files
		})
	}
}
