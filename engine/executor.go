package engine

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — Pipeline dispatcher
// ============================================================================
// Entry point: Execute(spec, tables, opts...)
//
// Pipeline:
//   1. Join (if more than one table participates)
//   2. Filter (recursive predicate tree, per row)
//   3. Anonymize (per-column rules, if any)
//   4. Dispatch on output mode: rows / pivot / quality
//
// Configuration is validated here, at the boundary: unknown output modes,
// operators, join types, and aggregation functions error out. Malformed
// DATA never errors — it falls through to false conditions, empty join
// results, and well-typed empty reports, per the engine's error taxonomy.
// ============================================================================

// Execute runs a QuerySpec against the named tables and returns a Result.
func Execute(spec QuerySpec, tables map[string]*Table, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	log := cfg.Logger

	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	view, err := resolveView(spec, tables, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved base view",
		zap.Int("rows", len(view.Rows)),
		zap.Int("columns", len(view.Columns)),
		zap.Int("joins", len(spec.Joins)))

	if spec.Filter != nil {
		caseSensitive := spec.CaseSensitive
		if cfg.CaseSensitive != nil {
			caseSensitive = *cfg.CaseSensitive
		}
		before := len(view.Rows)
		view = FilterTable(view, spec.Filter, caseSensitive)
		log.Debug("applied filter tree",
			zap.Int("before", before),
			zap.Int("after", len(view.Rows)))
	}

	if len(spec.Anonymize) > 0 {
		view = AnonymizeTable(view, spec.Anonymize, cfg.RedactMarker)
		log.Debug("anonymized columns", zap.Int("rules", len(spec.Anonymize)))
	}

	result := &Result{Output: spec.Output, RowCount: len(view.Rows)}

	switch spec.Output {
	case OutputRows:
		result.Table = view
		result.Grid = BuildRowsGrid(spec.Title, view)

	case OutputPivot:
		pivot, err := Pivot(view, *spec.Pivot)
		if err != nil {
			return nil, err
		}
		result.Pivot = pivot
		result.Grid = BuildPivotGrid(spec.Title, pivot)
		log.Debug("computed pivot",
			zap.Int("rowKeys", len(pivot.RowKeys)),
			zap.Int("columnKeys", len(pivot.ColumnKeys)),
			zap.Float64("grandTotal", pivot.GrandTotal))

	case OutputQuality:
		result.Quality = AnalyzeQuality(view)
		log.Debug("analyzed quality",
			zap.Float64("overall", result.Quality.Overall),
			zap.Int("rowDuplicates", result.Quality.RowDuplicates))
	}

	return result, nil
}

// validateSpec rejects malformed configuration before any data work.
func validateSpec(spec QuerySpec) error {
	switch spec.Output {
	case OutputRows, OutputQuality:
	case OutputPivot:
		if spec.Pivot == nil {
			return errors.New("pivot output requires a pivot config")
		}
	default:
		return errors.Errorf("unknown output mode %q", spec.Output)
	}
	if len(spec.Tables) == 0 {
		return errors.New("query references no tables")
	}
	for _, js := range spec.Joins {
		if err := validateJoinType(js.JoinType); err != nil {
			return err
		}
	}
	for col, method := range spec.Anonymize {
		if !KnownAnonymizeMethod(method) {
			return errors.Errorf("anonymize %s: unknown method %q", col, method)
		}
	}
	if spec.Filter != nil {
		return ValidateFilter(spec.Filter)
	}
	return nil
}

// resolveView produces the base table the downstream stages consume:
// either the single named table or the folded join result. An unknown
// table name yields an empty view, mirroring the join engine's contract.
func resolveView(spec QuerySpec, tables map[string]*Table, cfg *config) (*Table, error) {
	if len(spec.Joins) > 0 {
		return JoinTables(tables, spec.Joins, spec.Aliases)
	}

	t, ok := tables[spec.Tables[0]]
	if !ok {
		return emptyTable(spec.Tables[0]), nil
	}
	if t.Types == nil {
		t = NewTableSampled(t.Name, t.Columns, t.Rows, cfg.TypeSampleSize)
	}
	return t, nil
}
