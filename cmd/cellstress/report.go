// Report command for the cellstress CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kolkov/sharecell/internal/stress"
)

var flagLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recorded scenario runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := stress.OpenStore(resolveDBPath())
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := store.List(flagLimit)
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSCENARIO\tWORKERS\tOPS\tERRORS\tDURATION")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Scenario, r.Workers, r.Ops, r.Errors, r.Duration)
		}
		return w.Flush()
	},
}

func init() {
	reportCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum runs to list")
}
