// Root command for the cellstress CLI.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kolkov/sharecell"
)

// Global flag values.
var (
	flagConfigDir string
	flagDB        string
	flagJSON      bool
)

// cfg holds the loaded configuration for all subcommands; set by
// PersistentPreRunE.
var cfg *viper.Viper

// logger is the process logger; set by PersistentPreRunE.
var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:     "cellstress",
	Short:   "cellstress is a contention stress harness for the sharecell toolkit",
	Version: sharecell.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version needs neither config nor a config directory on disk.
		if cmd.Name() == "version" {
			return nil
		}
		logger = initLogger()

		loaded, err := loadConfig(resolveConfigDir())
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.cellstress)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "results database path (default: <config-dir>/results.db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigDir returns the configuration directory:
// --config-dir flag > CELLSTRESS_CONFIG_DIR env > $(CWD)/.cellstress.
func resolveConfigDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	if dir := os.Getenv("CELLSTRESS_CONFIG_DIR"); dir != "" {
		return dir
	}
	return ".cellstress"
}

// resolveDBPath returns the results database path:
// --db flag > config db_path > <config-dir>/results.db.
func resolveDBPath() string {
	if flagDB != "" {
		return flagDB
	}
	if p := cfg.GetString(cfgKeyDBPath); p != "" {
		return p
	}
	return defaultDBPath()
}
