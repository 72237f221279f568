package engine

import (
	"sort"
	"strings"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// DATA QUALITY ANALYZER — Missing values, duplicates, IQR outliers
// ============================================================================
// Per-column score: max(0, 100 − missingPercent − 50·outlierFraction).
// Overall score: unweighted mean of per-column scores.
//
// Outlier detection needs at least 4 non-blank numeric values. Q1/Q3 are
// the values at floor(0.25·n) and floor(0.75·n) of the ascending sort —
// positional quartiles, no interpolation.
// ============================================================================

const iqrMultiplier = 1.5

// minOutlierSamples is the smallest numeric sample that gets outlier
// detection. Below this, quartiles are too degenerate to fence on.
const minOutlierSamples = 4

// AnalyzeQuality computes a QualityReport over a table.
// An empty table yields a well-typed empty report, never an error.
func AnalyzeQuality(t *Table) *QualityReport {
	report := &QualityReport{Columns: map[string]ColumnQuality{}}
	if t == nil || len(t.Rows) == 0 {
		return report
	}
	total := len(t.Rows)
	report.RowCount = total
	report.RowDuplicates = countRowDuplicates(t)

	var scoreSum float64
	for _, col := range t.Columns {
		cq := analyzeColumn(t, col, total)
		report.Columns[col] = cq
		scoreSum += cq.Score
	}
	if len(t.Columns) > 0 {
		report.Overall = RoundTo2(scoreSum / float64(len(t.Columns)))
	}
	return report
}

func analyzeColumn(t *Table, col string, total int) ColumnQuality {
	missing := 0
	distinct := make(map[string]bool)
	var numeric []float64

	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || schema.IsBlank(v) {
			missing++
			continue
		}
		distinct[v] = true
		if f, ok := parseFinite(v); ok {
			numeric = append(numeric, f)
		}
	}

	missingPercent := float64(missing) / float64(total) * 100

	cq := ColumnQuality{
		Missing: MissingStats{Count: missing, Percent: RoundTo2(missingPercent)},
		// Approximation: repeats of non-missing values.
		Duplicates: DuplicateStats{Count: total - missing - len(distinct)},
	}

	if t.ColumnType(col) == schema.TypeNumber {
		cq.Outliers = detectOutliers(numeric)
	}

	outlierFraction := float64(cq.Outliers.Count) / float64(total)
	score := 100 - missingPercent - 50*outlierFraction
	if score < 0 {
		score = 0
	}
	cq.Score = RoundTo2(score)
	return cq
}

// detectOutliers applies the 1.5×IQR fence to a numeric sample.
func detectOutliers(values []float64) OutlierStats {
	if len(values) < minOutlierSamples {
		return OutlierStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[(n*3)/4]
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr

	count := 0
	for _, v := range sorted {
		if v < lower || v > upper {
			count++
		}
	}
	return OutlierStats{
		Count:  count,
		Bounds: &OutlierBounds{Lower: RoundTo2(lower), Upper: RoundTo2(upper)},
	}
}

// countRowDuplicates counts rows whose full canonical content (all columns,
// in order) repeats an earlier row. The first occurrence is the original.
func countRowDuplicates(t *Table) int {
	seen := make(map[string]bool, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		key := canonicalRow(row, t.Columns)
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}

func canonicalRow(row Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = row[col]
	}
	return strings.Join(parts, "\x1f")
}
