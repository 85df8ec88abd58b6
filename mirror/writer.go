package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strconv"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
	"github.com/rs/zerolog"
)

// DefaultFileExtension is the data-file extension used when the
// configuration does not override it.
const DefaultFileExtension = ".parquet"

// sequenceDigits is the fixed width of the zero-padded base name.
const sequenceDigits = 20

// WriterConfig holds mirror writer configuration.
type WriterConfig struct {
	// FileExtension is the data-file extension, fixed per deployment.
	FileExtension string `yaml:"file_extension"`
}

// TableMetadata is the key-column descriptor stored at
// <table-prefix>_metadata.json. The downstream ingestion side reads it
// to apply upserts and deletes.
type TableMetadata struct {
	KeyColumns []string `json:"keyColumns"`
}

// Writer implements the landing-zone write protocol for mirrored
// tables. It is safe to use from one goroutine per table; concurrent
// writers on the same table race on sequence allocation and are not
// supported.
type Writer struct {
	store  store.Store
	ext    string
	logger zerolog.Logger
}

// NewWriter creates a mirror writer on top of a store backend.
func NewWriter(s store.Store, cfg *WriterConfig, logger zerolog.Logger) *Writer {
	ext := DefaultFileExtension
	if cfg != nil && cfg.FileExtension != "" {
		ext = cfg.FileExtension
	}
	return &Writer{
		store:  s,
		ext:    ext,
		logger: logger,
	}
}

// CreateTable writes the key-column descriptor for id. Recreating a
// table overwrites the previous descriptor without any equality or
// version check (last write wins); the overwrite is logged.
func (w *Writer) CreateTable(ctx context.Context, id TableID, keyColumns ...string) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if len(keyColumns) == 0 {
		return errors.New(ErrInvalidMetadata, "at least one key column is required", nil).AddContext("table", id.String())
	}

	exists, _, err := w.scanTable(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		w.logger.Warn().
			Str("table", id.String()).
			Msg("Table metadata already exists, overwriting descriptor")
	}

	doc, err := json.Marshal(TableMetadata{KeyColumns: keyColumns})
	if err != nil {
		return errors.New(ErrInvalidMetadata, "failed to encode table metadata", err).AddContext("table", id.String())
	}

	file, err := w.store.CreateFile(ctx, id.MetadataPath())
	if err != nil {
		return errors.New(ErrWriteFailed, "failed to create table metadata", err).AddContext("table", id.String())
	}
	if _, err := file.Write(doc); err != nil {
		file.Close()
		return errors.New(ErrWriteFailed, "failed to write table metadata", err).AddContext("table", id.String())
	}
	if err := file.Close(); err != nil {
		return errors.New(ErrWriteFailed, "failed to finalize table metadata", err).AddContext("table", id.String())
	}

	w.logger.Info().
		Str("table", id.String()).
		Strs("key_columns", keyColumns).
		Msg("Created mirrored table")
	return nil
}

// TableExists reports whether the key-column descriptor for id exists.
// Its presence is the authoritative "table exists" signal.
func (w *Writer) TableExists(ctx context.Context, id TableID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}
	exists, _, err := w.scanTable(ctx, id)
	return exists, err
}

// NextSequenceNumber returns the sequence number the next data file
// will be written under: one past the highest numeric base name among
// the table folder's immediate children, or 1 when none exist.
func (w *Writer) NextSequenceNumber(ctx context.Context, id TableID) (uint64, error) {
	if err := id.Validate(); err != nil {
		return 0, err
	}
	_, next, err := w.scanTable(ctx, id)
	return next, err
}

// CreateNextTableDataFile verifies the table exists, allocates the next
// sequence number and opens a pending data file at the corresponding
// path. The caller owns the returned handle and must Close it on every
// path; Close commits the file when bytes were written and discards it
// otherwise.
func (w *Writer) CreateNextTableDataFile(ctx context.Context, id TableID) (*PendingDataFile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	exists, seq, err := w.scanTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Newf(ErrTableNotFound, "Table not found: %s", id.String()).
			AddContext("hint", "call CreateTable before writing data files")
	}

	target := id.Prefix() + fmt.Sprintf("%0*d", sequenceDigits, seq) + w.ext
	stream, err := w.store.CreateFile(ctx, target)
	if err != nil {
		return nil, errors.New(ErrWriteFailed, "failed to open data file", err).
			AddContext("table", id.String()).
			AddContext("path", target)
	}

	w.logger.Debug().
		Str("table", id.String()).
		Uint64("sequence", seq).
		Str("path", target).
		Msg("Opened pending data file")

	return &PendingDataFile{
		id:     id,
		seq:    seq,
		path:   target,
		store:  w.store,
		stream: stream,
		logger: w.logger,
	}, nil
}

// scanTable lists the table folder once and derives both the existence
// of the metadata descriptor and the next sequence number from the same
// listing.
func (w *Writer) scanTable(ctx context.Context, id TableID) (exists bool, next uint64, err error) {
	children, err := w.store.ListChildren(ctx, id.Prefix())
	if err != nil {
		return false, 0, errors.New(ErrScanFailed, "failed to list table folder", err).AddContext("table", id.String())
	}

	var max uint64
	for _, child := range children {
		if child.IsDir {
			continue
		}
		if child.Name == MetadataFileName {
			exists = true
			continue
		}
		base := child.Name[:len(child.Name)-len(path.Ext(child.Name))]
		seq, parseErr := strconv.ParseUint(base, 10, 64)
		if parseErr != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	if max == math.MaxUint64 {
		return exists, 0, errors.New(ErrSequenceOverflow, "sequence number space exhausted", nil).AddContext("table", id.String())
	}
	return exists, max + 1, nil
}
