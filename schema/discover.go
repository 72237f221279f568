package schema

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Column Type Classification
// ============================================================================
// Inspects raw string cells and classifies each column. No AI needed.
//
// Classification pipeline per column:
//   1. Sample the first rows → detect basic type (number, date, string)
//   2. Pattern matching over all values → detect smart type (email, phone...)
//
// Binding tie-breaks:
//   - Number is checked BEFORE date. "20240101" is a number, not a date.
//   - Smart-type pattern order defines precedence when a value could satisfy
//     more than one pattern.
// ============================================================================

// TypeSampleSize is how many rows DetectColumnTypes inspects per column.
// The first non-string type found among non-blank sampled values wins; a
// column whose early rows are all strings but whose later rows are numeric
// will be classified string for its whole lifetime. That is accepted,
// documented behavior.
const TypeSampleSize = 10

// IsBlank reports whether a cell is missing for classification purposes:
// empty or whitespace-only.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ============================================================================
// BASIC TYPE DETECTION
// ============================================================================

// DetectType classifies a single cell value.
// Blank → string. Finite number → number. Date-like shape that parses to a
// valid calendar date → date. Everything else → string.
func DetectType(value string) ColumnType {
	v := strings.TrimSpace(value)
	if v == "" {
		return TypeString
	}
	if isFiniteNumber(v) {
		return TypeNumber
	}
	if IsDateValue(v) {
		return TypeDate
	}
	return TypeString
}

// DetectColumnTypes classifies every column by sampling the first rows.
// sampleSize <= 0 falls back to TypeSampleSize. For each column the first
// non-string type found among non-blank sampled values wins; else string.
func DetectColumnTypes(columns []string, rows []map[string]string, sampleSize int) map[string]ColumnType {
	if sampleSize <= 0 {
		sampleSize = TypeSampleSize
	}
	limit := len(rows)
	if limit > sampleSize {
		limit = sampleSize
	}

	types := make(map[string]ColumnType, len(columns))
	for _, col := range columns {
		types[col] = TypeString
		for i := 0; i < limit; i++ {
			val := rows[i][col]
			if IsBlank(val) {
				continue
			}
			if t := DetectType(val); t != TypeString {
				types[col] = t
				break
			}
		}
	}
	return types
}

func isFiniteNumber(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// dateShape matches digit groups separated by '/' or '-'. A value must match
// this shape before any calendar parsing is attempted.
var dateShape = regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}$`)

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2-1-2006",
}

// IsDateValue reports whether a value has a date-like shape and parses to a
// valid calendar date.
func IsDateValue(value string) bool {
	_, ok := ParseDate(value)
	return ok
}

// ParseDate parses a date-like value against the known formats.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if !dateShape.MatchString(v) {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ============================================================================
// SMART TYPE DETECTION
// ============================================================================

// smartPatterns is the ordered precedence list for semantic classification.
// First match wins.
var smartPatterns = []struct {
	kind SmartKind
	re   *regexp.Regexp
}{
	{SmartEmail, regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)},
	{SmartPhone, regexp.MustCompile(`^\+?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}$`)},
	{SmartURL, regexp.MustCompile(`(?i)^(https?://)?(www\.)?[a-z0-9][a-z0-9.-]*\.[a-z]{2,}(/\S*)?$`)},
	{SmartCurrency, regexp.MustCompile(`^-?[$€£¥]\s?\d{1,3}(,\d{3})*(\.\d+)?$`)},
	{SmartDate, nil}, // handled via calendar parsing, keeps its precedence slot
	{SmartPercentage, regexp.MustCompile(`^-?\d+(\.\d+)?\s?%$`)},
	{SmartZipcode, regexp.MustCompile(`^\d{5}(-\d{4})?$`)},
}

// DetectSmartType classifies a single trimmed value against the ordered
// pattern list. Blank → SmartNone.
func DetectSmartType(value string) SmartKind {
	v := strings.TrimSpace(value)
	if v == "" {
		return SmartNone
	}
	for _, p := range smartPatterns {
		if p.kind == SmartDate {
			if IsDateValue(v) {
				return SmartDate
			}
			continue
		}
		if p.re.MatchString(v) {
			return p.kind
		}
	}
	return SmartNone
}

// DetectSmartColumnTypes classifies every column by counting smart-type
// matches over all non-blank values. The dominant kind is the one with the
// highest count, provided that count covers at least half of the non-blank
// values; otherwise SmartNone.
func DetectSmartColumnTypes(columns []string, rows []map[string]string) map[string]SmartTypeInfo {
	infos := make(map[string]SmartTypeInfo, len(columns))
	for _, col := range columns {
		counts := make(map[SmartKind]int)
		nonBlank := 0
		for _, row := range rows {
			val := row[col]
			if IsBlank(val) {
				continue
			}
			nonBlank++
			if kind := DetectSmartType(val); kind != SmartNone {
				counts[kind]++
			}
		}

		best, bestCount := dominantKind(counts)
		if nonBlank == 0 || bestCount*2 < nonBlank {
			infos[col] = SmartTypeInfo{Kind: SmartNone, InvalidCount: nonBlank}
			continue
		}
		infos[col] = SmartTypeInfo{
			Kind:         best,
			ValidCount:   bestCount,
			InvalidCount: nonBlank - bestCount,
			ValidPercent: math.Round(float64(bestCount)/float64(nonBlank)*10000) / 100,
		}
	}
	return infos
}

// dominantKind picks the kind with the highest count; ties resolve to the
// earlier kind in pattern precedence order.
func dominantKind(counts map[SmartKind]int) (SmartKind, int) {
	best := SmartNone
	bestCount := 0
	for _, p := range smartPatterns {
		if c := counts[p.kind]; c > bestCount {
			best = p.kind
			bestCount = c
		}
	}
	return best, bestCount
}
