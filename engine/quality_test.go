package engine

import (
	"strconv"
	"testing"
)

// ============================================================================
// DATA QUALITY TESTS
// ============================================================================

func numericColumn(values ...float64) *Table {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{"v": strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return NewTable("t", []string{"v"}, rows)
}

func TestIQROutlierDetection(t *testing.T) {
	report := AnalyzeQuality(numericColumn(1, 2, 3, 4, 5, 100))
	out := report.Columns["v"].Outliers

	if out.Count != 1 {
		t.Fatalf("outliers = %d, want exactly 1 (the value 100)", out.Count)
	}
	if out.Bounds == nil {
		t.Fatal("bounds must be reported when outlier detection ran")
	}
	// sorted [1 2 3 4 5 100]: Q1 = v[1] = 2, Q3 = v[4] = 5, IQR = 3.
	if out.Bounds.Lower != -2.5 || out.Bounds.Upper != 9.5 {
		t.Errorf("bounds = [%v, %v], want [-2.5, 9.5]", out.Bounds.Lower, out.Bounds.Upper)
	}
}

func TestTooFewValuesForOutliers(t *testing.T) {
	report := AnalyzeQuality(numericColumn(1, 2, 1000))
	out := report.Columns["v"].Outliers
	if out.Count != 0 || out.Bounds != nil {
		t.Error("fewer than 4 numeric values must report no outliers")
	}
}

func TestMissingStats(t *testing.T) {
	table := NewTable("t", []string{"name"}, []Row{
		{"name": "a"},
		{"name": ""},
		{"name": "   "},
		{"name": "b"},
	})
	report := AnalyzeQuality(table)
	m := report.Columns["name"].Missing
	if m.Count != 2 {
		t.Errorf("missing count = %d, want 2 (blank and whitespace-only)", m.Count)
	}
	if m.Percent != 50 {
		t.Errorf("missing percent = %v, want 50", m.Percent)
	}
}

func TestColumnDuplicateApproximation(t *testing.T) {
	// total 5, missing 1, distinct non-missing 2 → duplicates 2.
	table := NewTable("t", []string{"v"}, []Row{
		{"v": "x"}, {"v": "x"}, {"v": "x"}, {"v": "y"}, {"v": ""},
	})
	report := AnalyzeQuality(table)
	if got := report.Columns["v"].Duplicates.Count; got != 2 {
		t.Errorf("column duplicates = %d, want 2", got)
	}
}

func TestRowDuplicates(t *testing.T) {
	table := NewTable("t", []string{"a", "b"}, []Row{
		{"a": "1", "b": "x"},
		{"a": "1", "b": "x"},
		{"a": "1", "b": "y"},
		{"a": "1", "b": "x"},
	})
	report := AnalyzeQuality(table)
	// First {1,x} is the original; two later identical rows count.
	if report.RowDuplicates != 2 {
		t.Errorf("row duplicates = %d, want 2", report.RowDuplicates)
	}
}

func TestScores(t *testing.T) {
	clean := NewTable("t", []string{"v"}, []Row{
		{"v": "a"}, {"v": "b"}, {"v": "c"},
	})
	report := AnalyzeQuality(clean)
	if report.Columns["v"].Score != 100 {
		t.Errorf("clean column score = %v, want 100", report.Columns["v"].Score)
	}
	if report.Overall != 100 {
		t.Errorf("overall = %v, want 100", report.Overall)
	}

	halfMissing := NewTable("t", []string{"v"}, []Row{
		{"v": "a"}, {"v": ""},
	})
	report = AnalyzeQuality(halfMissing)
	if report.Columns["v"].Score != 50 {
		t.Errorf("half-missing score = %v, want 50", report.Columns["v"].Score)
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	table := NewTable("t", []string{"v"}, []Row{
		{"v": ""}, {"v": ""}, {"v": ""},
	})
	report := AnalyzeQuality(table)
	if report.Columns["v"].Score != 0 {
		t.Errorf("all-missing score = %v, want 0", report.Columns["v"].Score)
	}
}

func TestQualityOnEmptyTable(t *testing.T) {
	report := AnalyzeQuality(NewTable("t", []string{"v"}, nil))
	if report == nil || len(report.Columns) != 0 || report.Overall != 0 {
		t.Error("empty table must yield a well-typed empty report")
	}
}
