package engine

import (
	"sort"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// MEMO — Derived values keyed by (table snapshot, column)
// ============================================================================
// Ephemeral per-column computations (unique value lists, numeric stats) are
// memoized explicitly. The key includes the snapshot id, so recomputation
// is triggered by snapshot replacement — never by manual invalidation.
// Single-threaded per the engine's resource model; no locking.
// ============================================================================

// ColumnStats are memoized numeric summaries for one column.
type ColumnStats struct {
	Count    int     `json:"count"`
	NonBlank int     `json:"nonBlank"`
	Distinct int     `json:"distinct"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
}

// ValueCache memoizes derived per-column values across recomputations.
type ValueCache struct {
	uniques map[string][]string
	stats   map[string]*ColumnStats
}

// NewValueCache creates an empty cache.
func NewValueCache() *ValueCache {
	return &ValueCache{
		uniques: make(map[string][]string),
		stats:   make(map[string]*ColumnStats),
	}
}

func memoKey(t *Table, column string) string {
	return t.Snapshot + "\x00" + column
}

// UniqueValues returns the sorted distinct non-blank values of a column,
// computed once per (snapshot, column).
func (c *ValueCache) UniqueValues(t *Table, column string) []string {
	key := memoKey(t, column)
	if cached, ok := c.uniques[key]; ok {
		return cached
	}

	seen := make(map[string]bool)
	var values []string
	for _, row := range t.Rows {
		v, ok := row[column]
		if !ok || schema.IsBlank(v) {
			continue
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	c.uniques[key] = values
	return values
}

// Stats returns numeric summary statistics for a column, computed once per
// (snapshot, column). Non-numeric cells are skipped for min/max/mean.
func (c *ValueCache) Stats(t *Table, column string) *ColumnStats {
	key := memoKey(t, column)
	if cached, ok := c.stats[key]; ok {
		return cached
	}

	s := &ColumnStats{Count: len(t.Rows)}
	distinct := make(map[string]bool)
	var total float64
	numeric := 0

	for _, row := range t.Rows {
		v, ok := row[column]
		if !ok || schema.IsBlank(v) {
			continue
		}
		s.NonBlank++
		distinct[v] = true
		f, ok := parseFinite(v)
		if !ok {
			continue
		}
		if numeric == 0 || f < s.Min {
			s.Min = f
		}
		if numeric == 0 || f > s.Max {
			s.Max = f
		}
		total += f
		numeric++
	}
	s.Distinct = len(distinct)
	if numeric > 0 {
		s.Mean = RoundTo2(total / float64(numeric))
	}

	c.stats[key] = s
	return s
}
