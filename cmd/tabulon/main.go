package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ============================================================================
// TABULON CLI — Filter, join, pivot, audit, and anonymize tabular data
// ============================================================================

const version = "0.1.0"

var logger = zap.NewNop()

func main() {
	// Optional .env for TABULON_* defaults; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "tabulon",
		Short:   "In-memory tabular query engine",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				if l, err := zap.NewDevelopment(); err == nil {
					logger = l
				}
			}
		},
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("out", "", "write output to file instead of stdout")

	addCommands(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
