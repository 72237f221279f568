package engine

import (
	"github.com/google/uuid"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// TABLE CONSTRUCTION — Snapshot lifecycle
// ============================================================================
// A Table is created whole when a source is loaded, and replaced wholesale
// by any transform. Old snapshots simply become unreferenced; memoized
// derived values keyed by the old snapshot id age out with them.
// ============================================================================

// NewTable builds a Table from parsed rows, minting a snapshot id and
// inferring per-column type metadata. The column order is authoritative:
// rows are maps, so ingestion must supply it (typically the header row).
func NewTable(name string, columns []string, rows []Row) *Table {
	return NewTableSampled(name, columns, rows, schema.TypeSampleSize)
}

// NewTableSampled is NewTable with an explicit type-inference sample size.
func NewTableSampled(name string, columns []string, rows []Row, sampleSize int) *Table {
	return &Table{
		Name:       name,
		Columns:    columns,
		Rows:       rows,
		Types:      schema.DetectColumnTypes(columns, rows, sampleSize),
		SmartTypes: schema.DetectSmartColumnTypes(columns, rows),
		Snapshot:   uuid.NewString(),
	}
}

// derive produces a new Table sharing this table's column metadata but
// holding different rows. Used by transforms that do not change the schema.
func (t *Table) derive(rows []Row) *Table {
	return &Table{
		Name:       t.Name,
		Columns:    t.Columns,
		Rows:       rows,
		Types:      t.Types,
		SmartTypes: t.SmartTypes,
		Snapshot:   uuid.NewString(),
	}
}

// emptyTable is the well-typed empty result used when a referenced table is
// missing: no rows, no columns, never nil.
func emptyTable(name string) *Table {
	return &Table{
		Name:       name,
		Columns:    []string{},
		Rows:       []Row{},
		Types:      map[string]schema.ColumnType{},
		SmartTypes: map[string]schema.SmartTypeInfo{},
		Snapshot:   uuid.NewString(),
	}
}

// cloneRow copies a row map.
func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FilterTable materializes the rows matching a filter tree as a new Table.
// A nil root matches everything (vacuous truth), same as an empty group.
func FilterTable(t *Table, root *Group, caseSensitive bool) *Table {
	if root == nil {
		return t.derive(append([]Row(nil), t.Rows...))
	}
	matched := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if Evaluate(row, root, caseSensitive) {
			matched = append(matched, row)
		}
	}
	return t.derive(matched)
}

// ColumnType returns the inferred basic type for a column, defaulting to
// string for unknown columns.
func (t *Table) ColumnType(column string) schema.ColumnType {
	if ct, ok := t.Types[column]; ok {
		return ct
	}
	return schema.TypeString
}

// SmartKind returns the dominant smart type kind for a column.
func (t *Table) SmartKind(column string) schema.SmartKind {
	if info, ok := t.SmartTypes[column]; ok && info.IsSemantic() {
		return info.Kind
	}
	return schema.SmartNone
}
