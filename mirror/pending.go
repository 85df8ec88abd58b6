package mirror

import (
	"context"
	"io"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
	"github.com/rs/zerolog"
)

// PendingDataFile is a single-use write handle bound to one table and
// one sequence number. The caller writes rows through WriteData and
// must Close the handle on every exit path (defer is the expected
// shape). Close commits the file when at least one byte was written,
// and deletes the target object otherwise, abandoning the sequence
// number for this attempt.
type PendingDataFile struct {
	id     TableID
	seq    uint64
	path   string
	store  store.Store
	stream io.WriteCloser
	logger zerolog.Logger

	written int64
	closed  bool
}

// SequenceNumber returns the sequence number allocated to this file.
func (p *PendingDataFile) SequenceNumber() uint64 {
	return p.seq
}

// Path returns the target key of the data file.
func (p *PendingDataFile) Path() string {
	return p.path
}

// BytesWritten returns the cumulative byte count written so far.
func (p *PendingDataFile) BytesWritten() int64 {
	return p.written
}

// WriteData hands fn the underlying stream and tracks the bytes it
// writes. It may be called more than once before Close; writes are
// cumulative.
func (p *PendingDataFile) WriteData(fn func(io.Writer) error) error {
	if p.closed {
		return errors.New(ErrFileClosed, "pending data file already released", nil).AddContext("path", p.path)
	}

	cw := &countingWriter{w: p.stream}
	err := fn(cw)
	p.written += cw.n
	if err != nil {
		return errors.New(ErrWriteFailed, "write callback failed", err).
			AddContext("table", p.id.String()).
			AddContext("path", p.path)
	}
	return nil
}

// Close releases the handle exactly once. With zero bytes written the
// target object is deleted and a failed discard is surfaced. With bytes
// written, closing the stream is the commit.
func (p *PendingDataFile) Close(ctx context.Context) error {
	if p.closed {
		return nil
	}
	p.closed = true

	closeErr := p.stream.Close()

	if p.written == 0 {
		if err := p.store.DeleteIfExists(ctx, p.path); err != nil {
			return errors.New(ErrDiscardFailed, "failed to discard empty data file", err).
				AddContext("table", p.id.String()).
				AddContext("path", p.path)
		}
		p.logger.Debug().
			Str("table", p.id.String()).
			Uint64("sequence", p.seq).
			Msg("Discarded empty data file")
		return nil
	}

	if closeErr != nil {
		return errors.New(ErrWriteFailed, "failed to finalize data file", closeErr).
			AddContext("table", p.id.String()).
			AddContext("path", p.path)
	}

	p.logger.Info().
		Str("table", p.id.String()).
		Uint64("sequence", p.seq).
		Int64("bytes", p.written).
		Msg("Committed data file")
	return nil
}

// countingWriter tracks bytes flowing into the pending stream.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
