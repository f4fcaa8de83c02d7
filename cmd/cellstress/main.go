// Package main implements cellstress, the contention stress harness for
// the sharecell toolkit.
//
// cellstress drives the toolkit's primitives (ownership cells, borrow
// cells, and locks) through self-checking contention scenarios and records
// every run in a local SQLite database for later comparison:
//
//	cellstress run                     # all scenarios, configured defaults
//	cellstress run mutex arc-churn     # selected scenarios
//	cellstress run --workers 16 --iterations 10000 spin
//	cellstress report --limit 20       # recent recorded runs
//
// A scenario "error" is a violated toolkit invariant, never an expected
// negative result; any non-zero error count is a bug worth a report.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
