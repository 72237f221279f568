package engine

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// JOIN ENGINE — Hash-based multi-table joins
// ============================================================================
// Each pairwise stage builds a hash index on one side's join column (keyed
// by the case-insensitive string form, one-to-many) and probes with the
// other side — O(rows), never nested-loop.
//
// Output columns are always prefixed with the owning table's name or alias
// plus ".", so collisions across tables resolve deterministically. The
// running combined result becomes the left input of the next stage; its key
// columns are addressed under their already-prefixed names.
//
// A missing referenced table yields an empty result rather than an error.
// Rows whose join-key value is the empty string collide with each other as
// if they matched on a real key. That is preserved source behavior.
// ============================================================================

// JoinTables folds an ordered sequence of join stages over the named tables.
// aliases remaps table names to output column prefixes; unknown join types
// are malformed configuration and error out.
func JoinTables(tables map[string]*Table, specs []JoinSpec, aliases map[string]string) (*Table, error) {
	if len(specs) == 0 {
		return emptyTable("joined"), nil
	}

	aliasFor := func(name string) string {
		if aliases != nil {
			if a, ok := aliases[name]; ok && a != "" {
				return a
			}
		}
		return name
	}

	left, ok := tables[specs[0].LeftTable]
	if !ok {
		return emptyTable("joined"), nil
	}
	combined := prefixTable(left, aliasFor(specs[0].LeftTable))

	for _, spec := range specs {
		if err := validateJoinType(spec.JoinType); err != nil {
			return nil, err
		}
		right, ok := tables[spec.RightTable]
		if !ok {
			return emptyTable("joined"), nil
		}
		prefixedRight := prefixTable(right, aliasFor(spec.RightTable))

		leftKey := aliasFor(spec.LeftTable) + "." + spec.LeftColumn
		rightKey := aliasFor(spec.RightTable) + "." + spec.RightColumn

		combined = joinPair(combined, prefixedRight, leftKey, rightKey, spec.JoinType)
	}

	combined.Name = "joined"
	return combined, nil
}

func validateJoinType(jt JoinType) error {
	switch jt {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
		return nil
	}
	return errors.Errorf("unknown join type %q", jt)
}

// prefixTable rewrites a table so every column (and its type metadata) is
// addressed as "prefix.column".
func prefixTable(t *Table, prefix string) *Table {
	columns := make([]string, len(t.Columns))
	types := make(map[string]schema.ColumnType, len(t.Types))
	smarts := make(map[string]schema.SmartTypeInfo, len(t.SmartTypes))
	for i, col := range t.Columns {
		columns[i] = prefix + "." + col
	}
	for col, ct := range t.Types {
		types[prefix+"."+col] = ct
	}
	for col, info := range t.SmartTypes {
		smarts[prefix+"."+col] = info
	}

	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(Row, len(row))
		for k, v := range row {
			out[prefix+"."+k] = v
		}
		rows[i] = out
	}

	return &Table{
		Name:       prefix,
		Columns:    columns,
		Rows:       rows,
		Types:      types,
		SmartTypes: smarts,
		Snapshot:   uuid.NewString(),
	}
}

// joinKey is the case-insensitive string form used for hashing. Empty
// strings hash like any other key.
func joinKey(row Row, column string) string {
	return strings.ToLower(row[column])
}

// buildIndex maps join-key → row indices (one-to-many).
func buildIndex(t *Table, column string) map[string][]int {
	index := make(map[string][]int, len(t.Rows))
	for i, row := range t.Rows {
		k := joinKey(row, column)
		index[k] = append(index[k], i)
	}
	return index
}

func joinPair(left, right *Table, leftKey, rightKey string, jt JoinType) *Table {
	var rows []Row

	switch jt {
	case JoinInner:
		rows = probeLeft(left, right, leftKey, rightKey, false, nil)
	case JoinLeft:
		rows = probeLeft(left, right, leftKey, rightKey, true, nil)
	case JoinRight:
		rows = probeRight(left, right, leftKey, rightKey)
	case JoinFull:
		matchedRight := make(map[int]bool)
		rows = probeLeft(left, right, leftKey, rightKey, true, matchedRight)
		for i, row := range right.Rows {
			if !matchedRight[i] {
				rows = append(rows, cloneRow(row))
			}
		}
	}

	return &Table{
		Name:       "joined",
		Columns:    append(append([]string{}, left.Columns...), right.Columns...),
		Rows:       rows,
		Types:      mergeTypes(left.Types, right.Types),
		SmartTypes: mergeSmartTypes(left.SmartTypes, right.SmartTypes),
		Snapshot:   uuid.NewString(),
	}
}

// probeLeft indexes the right table and drives with the left. When
// keepUnmatched is set, unmatched left rows are emitted with the right-side
// columns absent. matchedRight, when non-nil, records which right rows
// found a partner (used by full outer).
func probeLeft(left, right *Table, leftKey, rightKey string, keepUnmatched bool, matchedRight map[int]bool) []Row {
	index := buildIndex(right, rightKey)
	rows := make([]Row, 0, len(left.Rows))

	for _, lrow := range left.Rows {
		matches := index[joinKey(lrow, leftKey)]
		if len(matches) == 0 {
			if keepUnmatched {
				rows = append(rows, cloneRow(lrow))
			}
			continue
		}
		for _, ri := range matches {
			if matchedRight != nil {
				matchedRight[ri] = true
			}
			rows = append(rows, mergeRows(lrow, right.Rows[ri]))
		}
	}
	return rows
}

// probeRight is the symmetric case: index the left table, drive with the
// right, and keep unmatched right rows.
func probeRight(left, right *Table, leftKey, rightKey string) []Row {
	index := buildIndex(left, leftKey)
	rows := make([]Row, 0, len(right.Rows))

	for _, rrow := range right.Rows {
		matches := index[joinKey(rrow, rightKey)]
		if len(matches) == 0 {
			rows = append(rows, cloneRow(rrow))
			continue
		}
		for _, li := range matches {
			rows = append(rows, mergeRows(left.Rows[li], rrow))
		}
	}
	return rows
}

func mergeRows(a, b Row) Row {
	out := make(Row, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func mergeTypes(a, b map[string]schema.ColumnType) map[string]schema.ColumnType {
	out := make(map[string]schema.ColumnType, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func mergeSmartTypes(a, b map[string]schema.SmartTypeInfo) map[string]schema.SmartTypeInfo {
	out := make(map[string]schema.SmartTypeInfo, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
