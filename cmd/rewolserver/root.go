package main

import (
	"os"

	"github.com/rewol/rewol/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "rewolserver",
	Short: "Aggregating Wake-on-LAN front-end",
	Long: `rewolserver polls one or more rewolproxy backends, merges their host
status into a single view, and serves a web surface to trigger
Wake-on-LAN for any host through its owning proxy:
  - GET  /            host list across all backends
  - GET  /api/status  the same view as JSON
  - POST /wol         forward a WOL command to the owning backend`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(os.Stdout, jsonOutput, verbose, quiet)
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(hashpwdCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
