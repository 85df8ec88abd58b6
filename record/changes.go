package record

import "github.com/apache/arrow-go/v18/arrow"

// RowMarkerColumn is the column the ingestion side inspects to decide
// how to apply each row against the mirrored table's key columns.
const RowMarkerColumn = "__rowMarker__"

// RowMarker classifies a change row.
type RowMarker int32

const (
	MarkerInsert RowMarker = 0
	MarkerUpdate RowMarker = 1
	MarkerDelete RowMarker = 2
	MarkerUpsert RowMarker = 4
)

// SchemaWithRowMarker appends the row-marker column to a table schema,
// producing the schema change files are written with.
func SchemaWithRowMarker(schema *arrow.Schema) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(schema.Fields())+1)
	fields = append(fields, schema.Fields()...)
	fields = append(fields, arrow.Field{
		Name: RowMarkerColumn,
		Type: arrow.PrimitiveTypes.Int32,
	})
	return arrow.NewSchema(fields, nil)
}

// MarkRows appends marker to every row, returning new row slices so
// the caller's batch is left untouched.
func MarkRows(rows [][]interface{}, marker RowMarker) [][]interface{} {
	marked := make([][]interface{}, len(rows))
	for i, row := range rows {
		out := make([]interface{}, len(row)+1)
		copy(out, row)
		out[len(row)] = int32(marker)
		marked[i] = out
	}
	return marked
}
