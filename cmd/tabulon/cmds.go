package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabulon-io/tabulon/engine"
	"github.com/tabulon-io/tabulon/helpers"
	"github.com/tabulon-io/tabulon/schema"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "types file.csv",
		Short: "Print inferred column types and smart types",
		Args:  cobra.ExactArgs(1),
		Run:   runTypes}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "filter file.csv",
		Short: "Filter rows with a single condition and print matching rows as CSV",
		Args:  cobra.ExactArgs(1),
		Run:   runFilter}
	cmd.Flags().String("field", "", "column to test (required)")
	cmd.Flags().String("op", "is", "operator (is, contains, >, <, in, regexp, ...)")
	cmd.Flags().String("value", "", "comparison value")
	cmd.Flags().Bool("case-sensitive", envBool("TABULON_CASE_SENSITIVE"), "exact-case string comparison")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "join left.csv right.csv",
		Short: "Join two files on a column pair and print the combined rows as CSV",
		Args:  cobra.ExactArgs(2),
		Run:   runJoin}
	cmd.Flags().String("left-column", "", "join column in the left file (required)")
	cmd.Flags().String("right-column", "", "join column in the right file (required)")
	cmd.Flags().String("type", "inner", "join type: inner, left, right, full")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "pivot file.csv",
		Short: "Compute a pivot/crosstab summary",
		Args:  cobra.ExactArgs(1),
		Run:   runPivot}
	cmd.Flags().String("row", "", "row dimension (required)")
	cmd.Flags().String("column", "", "column dimension (optional)")
	cmd.Flags().String("value", "", "value field to aggregate (optional; default counts rows)")
	cmd.Flags().String("agg", "sum", "aggregation: sum, avg, count, min, max, countDistinct")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "quality file.csv",
		Short: "Compute a data-quality report",
		Args:  cobra.ExactArgs(1),
		Run:   runQuality}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "anonymize file.csv",
		Short: "Apply per-column anonymization rules and print the result as CSV",
		Args:  cobra.ExactArgs(1),
		Run:   runAnonymize}
	cmd.Flags().StringArray("rule", nil, "column=method (mask, redact, hash, remove); repeatable")
	cmd.Flags().Bool("suggest", false, "print suggested methods for identifying columns and exit")
	cmd.Flags().String("marker", os.Getenv("TABULON_REDACT_MARKER"), "redaction marker literal")
	root.AddCommand(cmd)
}

// ============================================================================
// Command implementations
// ============================================================================

func runTypes(cmd *cobra.Command, args []string) {
	table := loadTable(args[0])
	cache := engine.NewValueCache()

	type columnInfo struct {
		Column string               `json:"column"`
		Type   string               `json:"type"`
		Smart  schema.SmartTypeInfo `json:"smartType"`
		Unique int                  `json:"uniqueValues"`
		Stats  *engine.ColumnStats  `json:"stats"`
	}

	infos := make([]columnInfo, 0, len(table.Columns))
	for _, col := range table.Columns {
		infos = append(infos, columnInfo{
			Column: col,
			Type:   string(table.ColumnType(col)),
			Smart:  table.SmartTypes[col],
			Unique: len(cache.UniqueValues(table, col)),
			Stats:  cache.Stats(table, col),
		})
	}
	printJSON(cmd, infos)
}

func runFilter(cmd *cobra.Command, args []string) {
	field, _ := cmd.Flags().GetString("field")
	op, _ := cmd.Flags().GetString("op")
	value, _ := cmd.Flags().GetString("value")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
	if field == "" {
		fatal(fmt.Errorf("--field is required"))
	}

	table := loadTable(args[0])
	filter := engine.NewGroup(engine.LogicAnd)
	filter, _ = engine.InsertNode(filter, filter.ID, engine.NewCondition(field, op, value))

	result, err := engine.Execute(engine.QuerySpec{
		Tables:        []string{table.Name},
		Filter:        filter,
		CaseSensitive: caseSensitive,
		Output:        engine.OutputRows,
	}, map[string]*engine.Table{table.Name: table}, engine.WithLogger(logger))
	if err != nil {
		fatal(err)
	}
	printCSV(cmd, result.Table)
}

func runJoin(cmd *cobra.Command, args []string) {
	leftColumn, _ := cmd.Flags().GetString("left-column")
	rightColumn, _ := cmd.Flags().GetString("right-column")
	joinType, _ := cmd.Flags().GetString("type")
	if leftColumn == "" || rightColumn == "" {
		fatal(fmt.Errorf("--left-column and --right-column are required"))
	}

	left := loadTable(args[0])
	right := loadTable(args[1])
	// Two files can share a basename (a/data.csv b/data.csv); the tables map
	// is keyed by name, so a collision would silently self-join.
	right.Name = disambiguate(left.Name, right.Name)

	result, err := engine.Execute(engine.QuerySpec{
		Tables: []string{left.Name, right.Name},
		Joins: []engine.JoinSpec{{
			LeftTable:   left.Name,
			LeftColumn:  leftColumn,
			RightTable:  right.Name,
			RightColumn: rightColumn,
			JoinType:    engine.JoinType(joinType),
		}},
		Output: engine.OutputRows,
	}, map[string]*engine.Table{left.Name: left, right.Name: right},
		engine.WithLogger(logger))
	if err != nil {
		fatal(err)
	}
	printCSV(cmd, result.Table)
}

func runPivot(cmd *cobra.Command, args []string) {
	rowField, _ := cmd.Flags().GetString("row")
	columnField, _ := cmd.Flags().GetString("column")
	valueField, _ := cmd.Flags().GetString("value")
	agg, _ := cmd.Flags().GetString("agg")

	table := loadTable(args[0])
	result, err := engine.Execute(engine.QuerySpec{
		Tables: []string{table.Name},
		Output: engine.OutputPivot,
		Pivot: &engine.PivotConfig{
			RowField:    rowField,
			ColumnField: columnField,
			ValueField:  valueField,
			AggFunc:     agg,
		},
	}, map[string]*engine.Table{table.Name: table}, engine.WithLogger(logger))
	if err != nil {
		fatal(err)
	}
	printJSON(cmd, result.Grid)
}

func runQuality(cmd *cobra.Command, args []string) {
	table := loadTable(args[0])
	result, err := engine.Execute(engine.QuerySpec{
		Tables: []string{table.Name},
		Output: engine.OutputQuality,
	}, map[string]*engine.Table{table.Name: table}, engine.WithLogger(logger))
	if err != nil {
		fatal(err)
	}
	printJSON(cmd, result.Quality)
}

func runAnonymize(cmd *cobra.Command, args []string) {
	table := loadTable(args[0])

	if suggest, _ := cmd.Flags().GetBool("suggest"); suggest {
		suggestions := map[string]engine.AnonymizeMethod{}
		for _, col := range table.Columns {
			if method, ok := engine.SuggestMethod(table.SmartKind(col)); ok {
				suggestions[col] = method
			}
		}
		printJSON(cmd, suggestions)
		return
	}

	ruleArgs, _ := cmd.Flags().GetStringArray("rule")
	marker, _ := cmd.Flags().GetString("marker")
	rules := make(map[string]engine.AnonymizeMethod, len(ruleArgs))
	for _, r := range ruleArgs {
		parts := strings.SplitN(r, "=", 2)
		if len(parts) != 2 {
			fatal(fmt.Errorf("bad --rule %q, want column=method", r))
		}
		rules[parts[0]] = engine.AnonymizeMethod(parts[1])
	}

	result, err := engine.Execute(engine.QuerySpec{
		Tables:    []string{table.Name},
		Anonymize: rules,
		Output:    engine.OutputRows,
	}, map[string]*engine.Table{table.Name: table},
		engine.WithLogger(logger), engine.WithRedactMarker(marker))
	if err != nil {
		fatal(err)
	}
	printCSV(cmd, result.Table)
}

// ============================================================================
// I/O helpers
// ============================================================================

func loadTable(path string) *engine.Table {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	name := strings.TrimSuffix(strings.TrimSuffix(pathBase(path), ".csv"), ".CSV")
	table, err := helpers.ParseCSV(data, name)
	if err != nil {
		fatal(err)
	}
	return table
}

// disambiguate returns name, suffixed if it would collide with taken.
func disambiguate(taken, name string) string {
	if name == taken {
		return name + "_2"
	}
	return name
}

func pathBase(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	writeOutput(cmd, append(data, '\n'))
}

func printCSV(cmd *cobra.Command, t *engine.Table) {
	data, err := helpers.WriteCSV(t)
	if err != nil {
		fatal(err)
	}
	writeOutput(cmd, data)
}

func writeOutput(cmd *cobra.Command, data []byte) {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			fatal(err)
		}
		return
	}
	os.Stdout.Write(data)
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
