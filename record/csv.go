// Package record turns domain record sources into the typed rows the
// mirror writer's columnar adapter consumes. The mirror core does not
// depend on anything here; it only sees the resulting write callback.
package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/openmirror/landingzone/pkg/errors"
)

// Package-specific error codes for record sources
var (
	RecordParseFailed   = errors.MustNewCode("record.parse_failed")
	RecordColumnCount   = errors.MustNewCode("record.column_count_mismatch")
	RecordReadFailed    = errors.MustNewCode("record.read_failed")
	RecordTypeUnhandled = errors.MustNewCode("record.type_unhandled")
)

// CSVSource reads delimited text into rows typed against an Arrow
// schema. Empty cells become nulls for nullable fields.
type CSVSource struct {
	schema    *arrow.Schema
	reader    *csv.Reader
	hasHeader bool
}

// NewCSVSource creates a CSV source over r. When hasHeader is set the
// first row is skipped.
func NewCSVSource(r io.Reader, schema *arrow.Schema, hasHeader bool) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(schema.Fields())
	return &CSVSource{
		schema:    schema,
		reader:    cr,
		hasHeader: hasHeader,
	}
}

// ReadAll consumes the source and returns every row, typed per the
// schema's field types.
func (s *CSVSource) ReadAll() ([][]interface{}, error) {
	var rows [][]interface{}
	first := true

	for {
		raw, err := s.reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.New(RecordReadFailed, "failed to read csv record", err)
		}
		if first && s.hasHeader {
			first = false
			continue
		}
		first = false

		row, err := s.convertRow(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func (s *CSVSource) convertRow(raw []string) ([]interface{}, error) {
	fields := s.schema.Fields()
	if len(raw) != len(fields) {
		return nil, errors.Newf(RecordColumnCount, "expected %d columns, got %d", len(fields), len(raw))
	}

	row := make([]interface{}, len(raw))
	for i, cell := range raw {
		field := fields[i]
		if cell == "" && field.Nullable {
			row[i] = nil
			continue
		}

		value, err := convertCell(cell, field.Type)
		if err != nil {
			return nil, errors.New(RecordParseFailed, "failed to parse csv cell", err).
				AddContext("column", field.Name).
				AddContext("value", cell)
		}
		row[i] = value
	}
	return row, nil
}

func convertCell(cell string, dataType arrow.DataType) (interface{}, error) {
	switch dataType.(type) {
	case *arrow.StringType:
		return cell, nil
	case *arrow.BooleanType:
		return strconv.ParseBool(cell)
	case *arrow.Int32Type:
		v, err := strconv.ParseInt(cell, 10, 32)
		return int32(v), err
	case *arrow.Int64Type:
		return strconv.ParseInt(cell, 10, 64)
	case *arrow.Float32Type:
		v, err := strconv.ParseFloat(cell, 32)
		return float32(v), err
	case *arrow.Float64Type:
		return strconv.ParseFloat(cell, 64)
	default:
		return nil, errors.Newf(RecordTypeUnhandled, "unsupported column type %s", fmt.Sprintf("%T", dataType))
	}
}
