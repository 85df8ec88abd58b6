// Package parquet encodes typed rows into Parquet streams for the
// landing zone. It satisfies the mirror writer's write-callback
// contract: the mirror core only ever sees "a function that writes
// into a stream".
package parquet

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	pq "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/openmirror/landingzone/pkg/errors"
)

// Package-specific error codes for parquet encoding
var (
	ParquetCompressionInvalid  = errors.MustNewCode("parquet.compression_invalid")
	ParquetSchemaIsNil         = errors.MustNewCode("parquet.schema_is_nil")
	ParquetWriterFailed        = errors.MustNewCode("parquet.writer_failed")
	ParquetWriteFailed         = errors.MustNewCode("parquet.write_failed")
	ParquetCloseFailed         = errors.MustNewCode("parquet.close_failed")
	ParquetInsufficientColumns = errors.MustNewCode("parquet.insufficient_columns")
	ParquetTypeMismatch        = errors.MustNewCode("parquet.type_mismatch")
	ParquetUnsupportedType     = errors.MustNewCode("parquet.unsupported_type")
)

// Config holds encoding settings.
type Config struct {
	// Compression names the codec: none, snappy, gzip, brotli, lz4, zstd.
	Compression string `yaml:"compression"`
}

// Writer encodes row batches for one schema.
type Writer struct {
	schema *arrow.Schema
	pool   memory.Allocator
	codec  compress.Compression
}

// NewWriter creates a Parquet writer for schema. A nil config defaults
// to snappy compression.
func NewWriter(schema *arrow.Schema, cfg *Config) (*Writer, error) {
	if schema == nil {
		return nil, errors.New(ParquetSchemaIsNil, "schema is nil", nil)
	}

	codec := compress.Codecs.Snappy
	if cfg != nil && cfg.Compression != "" {
		c, err := compressionCodec(cfg.Compression)
		if err != nil {
			return nil, err
		}
		codec = c
	}

	return &Writer{
		schema: schema,
		pool:   memory.NewGoAllocator(),
		codec:  codec,
	}, nil
}

// Write encodes rows as a single Parquet file into dst. The stream is
// complete when Write returns; dst is never closed here.
func (w *Writer) Write(dst io.Writer, rows [][]interface{}) error {
	arrays, err := w.convertRowsToArrays(rows)
	if err != nil {
		return err
	}
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	rec := array.NewRecord(w.schema, arrays, int64(len(rows)))
	defer rec.Release()

	props := pq.NewWriterProperties(pq.WithCompression(w.codec))
	fw, err := pqarrow.NewFileWriter(w.schema, noCloseWriter{dst}, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return errors.New(ParquetWriterFailed, "failed to create parquet writer", err)
	}

	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.New(ParquetWriteFailed, "failed to write record batch", err)
	}
	if err := fw.Close(); err != nil {
		return errors.New(ParquetCloseFailed, "failed to finalize parquet stream", err)
	}
	return nil
}

// Callback adapts a row batch to the mirror writer's WriteData contract.
func (w *Writer) Callback(rows [][]interface{}) func(io.Writer) error {
	return func(dst io.Writer) error {
		return w.Write(dst, rows)
	}
}

// noCloseWriter hides any Close method of the destination so the
// parquet writer cannot close a stream it does not own.
type noCloseWriter struct {
	io.Writer
}

func compressionCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip", "gz":
		return compress.Codecs.Gzip, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "lz4":
		return compress.Codecs.Lz4, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(ParquetCompressionInvalid, "unsupported compression type: %s", name)
	}
}

func (w *Writer) convertRowsToArrays(rows [][]interface{}) ([]arrow.Array, error) {
	numCols := len(w.schema.Fields())
	arrays := make([]arrow.Array, numCols)

	for colIdx := 0; colIdx < numCols; colIdx++ {
		field := w.schema.Field(colIdx)
		arr, err := w.convertColumnToArray(rows, colIdx, field)
		if err != nil {
			for _, a := range arrays[:colIdx] {
				a.Release()
			}
			return nil, err
		}
		arrays[colIdx] = arr
	}
	return arrays, nil
}

func (w *Writer) convertColumnToArray(rows [][]interface{}, colIdx int, field arrow.Field) (arrow.Array, error) {
	builder := array.NewBuilder(w.pool, field.Type)
	defer builder.Release()

	for rowIdx, row := range rows {
		if colIdx >= len(row) {
			return nil, errors.New(ParquetInsufficientColumns, "row has insufficient columns", nil).
				AddContext("row_index", fmt.Sprintf("%d", rowIdx))
		}
		if err := appendValueToBuilder(builder, row[colIdx], field.Type); err != nil {
			return nil, err
		}
	}
	return builder.NewArray(), nil
}

func appendValueToBuilder(builder array.Builder, value interface{}, dataType arrow.DataType) error {
	if value == nil {
		builder.AppendNull()
		return nil
	}

	switch dataType.(type) {
	case *arrow.BooleanType:
		if v, ok := value.(bool); ok {
			builder.(*array.BooleanBuilder).Append(v)
		} else {
			return errors.New(ParquetTypeMismatch, "expected bool", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	case *arrow.Int32Type:
		if v, ok := toInt64(value); ok {
			builder.(*array.Int32Builder).Append(int32(v))
		} else {
			return errors.New(ParquetTypeMismatch, "expected int32", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	case *arrow.Int64Type:
		if v, ok := toInt64(value); ok {
			builder.(*array.Int64Builder).Append(v)
		} else {
			return errors.New(ParquetTypeMismatch, "expected int64", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	case *arrow.Float32Type:
		if v, ok := toFloat64(value); ok {
			builder.(*array.Float32Builder).Append(float32(v))
		} else {
			return errors.New(ParquetTypeMismatch, "expected float32", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	case *arrow.Float64Type:
		if v, ok := toFloat64(value); ok {
			builder.(*array.Float64Builder).Append(v)
		} else {
			return errors.New(ParquetTypeMismatch, "expected float64", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	case *arrow.StringType:
		if v, ok := value.(string); ok {
			builder.(*array.StringBuilder).Append(v)
		} else {
			return errors.New(ParquetTypeMismatch, "expected string", nil).AddContext("actual_type", fmt.Sprintf("%T", value))
		}

	default:
		return errors.New(ParquetUnsupportedType, "unsupported data type", nil).AddContext("data_type", fmt.Sprintf("%T", dataType))
	}
	return nil
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
