// Package tabulon provides an in-memory tabular query engine.
// Load one or more datasets, then filter, join, pivot, audit, and
// anonymize them — all in-process, no server round-trip.
//
// Usage:
//
//	import "github.com/tabulon-io/tabulon/engine"
//
//	result, err := engine.Execute(spec, tables,
//	    engine.WithLogger(logger),
//	)
//
// The engine takes a QuerySpec (joins, a recursive filter tree, an output
// mode) and a set of named Tables, and returns the filtered/joined row view,
// a pivot grid, or a data-quality report.
//
// Parsing and export are handled separately by the helpers package. The
// engine never touches the network or the filesystem — all computation is
// local and synchronous over immutable Table snapshots.
package tabulon
