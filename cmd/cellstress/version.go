// Version command for the cellstress CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolkov/sharecell"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and toolkit information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := sharecell.GetInfo()
		fmt.Printf("cellstress %s (primitives: %s)\n",
			info.Version, strings.Join(info.Primitives, ", "))
	},
}
