package engine

import (
	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// GRID BUILDER — Render-ready output for rows and pivot results
// ============================================================================
// The engine's obligation ends at a well-defined grid of strings; actual
// presentation (theming, pagination, banners) belongs to the consumer.
// ============================================================================

// Grid is a render-ready table of strings.
type Grid struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a grid column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary carries a totals row for a grid.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// BuildRowsGrid renders a table view as a grid, columns in table order,
// absent cells as empty strings.
func BuildRowsGrid(title string, t *Table) *Grid {
	columns := make([]Column, len(t.Columns))
	for i, col := range t.Columns {
		c := Column{Key: col, Label: col, Type: "text", Align: "left"}
		if t.ColumnType(col) == schema.TypeNumber {
			c.Type = "number"
			c.Align = "right"
		}
		columns[i] = c
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		rows[i] = cells
	}

	return &Grid{Title: title, Columns: columns, Rows: rows}
}

// BuildPivotGrid renders a crosstab: one row per row-key, one column per
// column-key, a trailing Total column, and a totals summary row.
func BuildPivotGrid(title string, p *PivotResult) *Grid {
	columns := make([]Column, 0, len(p.ColumnKeys)+2)
	columns = append(columns, Column{
		Key: p.RowField, Label: p.RowField, Type: "text", Align: "left",
	})
	for _, ck := range p.ColumnKeys {
		columns = append(columns, Column{Key: ck, Label: ck, Type: "number", Align: "right"})
	}
	columns = append(columns, Column{Key: "total", Label: "Total", Type: "number", Align: "right"})

	rows := make([][]string, 0, len(p.RowKeys))
	for _, rk := range p.RowKeys {
		cells := make([]string, 0, len(p.ColumnKeys)+2)
		cells = append(cells, rk)
		for _, ck := range p.ColumnKeys {
			cells = append(cells, FormatNumber(p.Cells[rk][ck]))
		}
		cells = append(cells, FormatNumber(p.RowTotals[rk]))
		rows = append(rows, cells)
	}

	summary := &Summary{Label: "Total", Values: map[string]string{}}
	for _, ck := range p.ColumnKeys {
		summary.Values[ck] = FormatNumber(p.ColumnTotals[ck])
	}
	summary.Values["total"] = FormatNumber(p.GrandTotal)

	return &Grid{Title: title, Columns: columns, Rows: rows, Summary: summary}
}
