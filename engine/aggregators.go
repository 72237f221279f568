package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================================
// AGGREGATORS — Pivot / Crosstab Engine
// ============================================================================
// Row-keys and column-keys are the distinct stringified values of the
// respective fields (missing value → "(Empty)"), sorted lexicographically.
// Cell values coerce the value field (or a constant 1) to numbers, drop
// blanks and non-numerics, and apply the aggregation function.
//
// All numeric outputs are rounded to 2 decimal places for display
// stability. avg/min/max over zero values default to 0 — documented, not
// an error. An unknown aggregation function is malformed configuration and
// errors out; it is never silently defaulted.
// ============================================================================

// EmptyBucket is the key used when the row or column field is missing/blank.
const EmptyBucket = "(Empty)"

// TotalBucket is the synthetic column key when no column field is set.
const TotalBucket = "Total"

// AggFuncs lists the supported aggregation functions.
var AggFuncs = []string{"sum", "avg", "count", "min", "max", "countDistinct"}

// ValidAggFunc reports whether name is a supported aggregation function.
func ValidAggFunc(name string) bool {
	for _, f := range AggFuncs {
		if f == name {
			return true
		}
	}
	return false
}

// Pivot computes a crosstab summary over a table.
// An empty table yields a well-typed empty result, never an error; a
// missing row field or unknown agg func is configuration and does error.
func Pivot(t *Table, cfg PivotConfig) (*PivotResult, error) {
	if cfg.RowField == "" {
		return nil, errors.New("pivot: rowField is required")
	}
	if !ValidAggFunc(cfg.AggFunc) {
		return nil, errors.Errorf("pivot: unknown aggregation function %q", cfg.AggFunc)
	}

	result := &PivotResult{
		RowField:     cfg.RowField,
		ColumnField:  cfg.ColumnField,
		RowKeys:      []string{},
		ColumnKeys:   []string{},
		Cells:        map[string]map[string]float64{},
		RowTotals:    map[string]float64{},
		ColumnTotals: map[string]float64{},
	}
	if t == nil || len(t.Rows) == 0 {
		return result, nil
	}

	// Bucket value samples per (rowKey, colKey) in one pass.
	buckets := make(map[string]map[string][]float64)
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)

	for _, row := range t.Rows {
		rk := bucketKey(row, cfg.RowField)
		ck := TotalBucket
		if cfg.ColumnField != "" {
			ck = bucketKey(row, cfg.ColumnField)
		}
		if !rowSeen[rk] {
			rowSeen[rk] = true
			result.RowKeys = append(result.RowKeys, rk)
		}
		if !colSeen[ck] {
			colSeen[ck] = true
			result.ColumnKeys = append(result.ColumnKeys, ck)
		}

		v, ok := cellValue(row, cfg.ValueField)
		if !ok {
			continue
		}
		if buckets[rk] == nil {
			buckets[rk] = make(map[string][]float64)
		}
		buckets[rk][ck] = append(buckets[rk][ck], v)
	}

	sort.Strings(result.RowKeys)
	sort.Strings(result.ColumnKeys)

	for _, rk := range result.RowKeys {
		result.Cells[rk] = make(map[string]float64, len(result.ColumnKeys))
		var rowTotal float64
		for _, ck := range result.ColumnKeys {
			cell := aggregate(buckets[rk][ck], cfg.AggFunc)
			result.Cells[rk][ck] = RoundTo2(cell)
			rowTotal += cell
			result.ColumnTotals[ck] += cell
		}
		result.RowTotals[rk] = RoundTo2(rowTotal)
		result.GrandTotal += rowTotal
	}
	for ck, total := range result.ColumnTotals {
		result.ColumnTotals[ck] = RoundTo2(total)
	}
	result.GrandTotal = RoundTo2(result.GrandTotal)

	return result, nil
}

// bucketKey stringifies a row's value for a pivot dimension.
func bucketKey(row Row, field string) string {
	v, ok := row[field]
	if !ok || strings.TrimSpace(v) == "" {
		return EmptyBucket
	}
	return v
}

// cellValue coerces the value field to a number; a row with no value field
// contributes a constant 1 (counting). Blank or non-numeric values are
// dropped from the cell.
func cellValue(row Row, valueField string) (float64, bool) {
	if valueField == "" {
		return 1, true
	}
	return parseFinite(row[valueField])
}

func aggregate(values []float64, fn string) float64 {
	if len(values) == 0 {
		return 0
	}
	switch fn {
	case "sum":
		return sum(values)
	case "avg":
		return sum(values) / float64(len(values))
	case "count":
		return float64(len(values))
	case "min":
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case "max":
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case "countDistinct":
		seen := make(map[float64]bool, len(values))
		for _, v := range values {
			seen[v] = true
		}
		return float64(len(seen))
	}
	return 0
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatNumber renders a float the way grids display it: integers without
// a fraction, everything else with two decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
