package engine

import (
	"github.com/google/uuid"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// ENGINE TYPES — In-Memory Tabular Query Engine
// ============================================================================
// Value-oriented: every stage consumes an immutable Table snapshot and
// produces a new one. Nothing here mutates its input in place, so a Table
// replacement is atomic from the consumer's point of view.
// ============================================================================

// Row is one record: a mapping from column name to a string cell.
// A missing key means the cell is absent (e.g. the unmatched side of an
// outer join). Downstream stages coerce cells to numbers or dates on demand.
type Row = map[string]string

// ============================================================================
// TABLE — Immutable snapshot of a dataset
// ============================================================================

// Table is an ordered sequence of Rows sharing a column set, plus derived
// per-column type metadata. Tables are replaced wholesale, never mutated:
// every transform returns a new Table with a fresh Snapshot id.
type Table struct {
	Name       string                          `json:"name"`
	Columns    []string                        `json:"columns"`
	Rows       []Row                           `json:"rows"`
	Types      map[string]schema.ColumnType    `json:"types"`
	SmartTypes map[string]schema.SmartTypeInfo `json:"smartTypes"`

	// Snapshot identifies this exact value. Derived computations (unique
	// values, column stats) are memoized per (snapshot, column) key.
	Snapshot string `json:"snapshot"`
}

// ============================================================================
// FILTER TREE — Recursive AND/OR predicate
// ============================================================================

// Logic combines the children of a filter group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// FilterNode is a node in the recursive predicate tree: either a *Group or
// a *Condition. Nodes are addressed by opaque id for external mutation,
// never by structural position.
type FilterNode interface {
	NodeID() string
}

// Group combines child nodes with AND/OR logic.
// A group with zero children evaluates to true — an empty filter matches
// everything.
type Group struct {
	ID       string       `json:"id"`
	Logic    Logic        `json:"logic"`
	Children []FilterNode `json:"children"`
}

// Condition is a leaf predicate against a single field.
type Condition struct {
	ID       string `json:"id"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

func (g *Group) NodeID() string     { return g.ID }
func (c *Condition) NodeID() string { return c.ID }

// NewGroup creates an empty group with a fresh id.
func NewGroup(logic Logic) *Group {
	return &Group{ID: uuid.NewString(), Logic: logic}
}

// NewCondition creates a condition with a fresh id.
func NewCondition(field, operator, value string) *Condition {
	return &Condition{ID: uuid.NewString(), Field: field, Operator: operator, Value: value}
}

// ============================================================================
// JOIN CONFIG
// ============================================================================

// JoinType selects the join semantics for one stage.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

// JoinSpec describes one pairwise join stage. A join configuration is an
// ordered sequence of JoinSpecs, applied left-to-right, each folding into
// the prior combined result.
type JoinSpec struct {
	LeftTable   string   `json:"leftTable"`
	LeftColumn  string   `json:"leftColumn"`
	RightTable  string   `json:"rightTable"`
	RightColumn string   `json:"rightColumn"`
	JoinType    JoinType `json:"joinType"`
}

// ============================================================================
// PIVOT CONFIG
// ============================================================================

// PivotConfig describes a pivot/crosstab summary. RowField is required.
// An empty ColumnField produces a single synthetic "Total" column bucket;
// an empty ValueField aggregates a constant 1 per row (counting).
type PivotConfig struct {
	RowField    string `json:"rowField"`
	ColumnField string `json:"columnField,omitempty"`
	ValueField  string `json:"valueField,omitempty"`
	AggFunc     string `json:"aggFunc"`
}

// PivotResult is the computed crosstab. Cells are keyed rowKey → colKey.
// All numeric outputs are rounded to 2 decimal places for display stability.
type PivotResult struct {
	RowField     string                        `json:"rowField"`
	ColumnField  string                        `json:"columnField,omitempty"`
	RowKeys      []string                      `json:"rowKeys"`
	ColumnKeys   []string                      `json:"columnKeys"`
	Cells        map[string]map[string]float64 `json:"cells"`
	RowTotals    map[string]float64            `json:"rowTotals"`
	ColumnTotals map[string]float64            `json:"columnTotals"`
	GrandTotal   float64                       `json:"grandTotal"`
}

// ============================================================================
// QUALITY REPORT
// ============================================================================

// MissingStats counts blank cells in a column.
type MissingStats struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DuplicateStats approximates repeated non-missing values in a column.
type DuplicateStats struct {
	Count int `json:"count"`
}

// OutlierBounds are the IQR fences used for outlier detection.
type OutlierBounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// OutlierStats counts IQR outliers in a numeric column.
type OutlierStats struct {
	Count  int            `json:"count"`
	Bounds *OutlierBounds `json:"bounds,omitempty"`
}

// ColumnQuality is the per-column section of a QualityReport.
type ColumnQuality struct {
	Missing    MissingStats   `json:"missing"`
	Duplicates DuplicateStats `json:"duplicates"`
	Outliers   OutlierStats   `json:"outliers"`
	Score      float64        `json:"score"`
}

// QualityReport summarizes data quality for a whole table.
type QualityReport struct {
	Columns       map[string]ColumnQuality `json:"columns"`
	Overall       float64                  `json:"overall"`
	RowDuplicates int                      `json:"rowDuplicates"`
	RowCount      int                      `json:"rowCount"`
}

// ============================================================================
// QUERYSPEC / RESULT — Contract between callers and Execute
// ============================================================================

// OutputMode selects what Execute produces from the filtered/joined view.
type OutputMode string

const (
	OutputRows    OutputMode = "rows"
	OutputPivot   OutputMode = "pivot"
	OutputQuality OutputMode = "quality"
)

// QuerySpec defines what the engine should compute: which tables
// participate, how they join, which rows survive the filter tree, and which
// view of the result the caller wants.
type QuerySpec struct {
	Tables        []string                   `json:"tables"`
	Joins         []JoinSpec                 `json:"joins,omitempty"`
	Aliases       map[string]string          `json:"aliases,omitempty"`
	Filter        *Group                     `json:"filter,omitempty"`
	CaseSensitive bool                       `json:"caseSensitive"`
	Anonymize     map[string]AnonymizeMethod `json:"anonymize,omitempty"`
	Output        OutputMode                 `json:"output"`
	Pivot         *PivotConfig               `json:"pivot,omitempty"`
	Title         string                     `json:"title,omitempty"`
}

// Result is the engine's output. Exactly one of Table/Pivot/Quality is
// populated based on Output; Grid is a render-ready companion for rows and
// pivot modes.
type Result struct {
	Output  OutputMode     `json:"output"`
	Table   *Table         `json:"table,omitempty"`
	Pivot   *PivotResult   `json:"pivot,omitempty"`
	Quality *QualityReport `json:"quality,omitempty"`
	Grid    *Grid          `json:"grid,omitempty"`

	RowCount int `json:"rowCount"`
}
