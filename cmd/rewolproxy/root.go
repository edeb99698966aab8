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
	Use:   "rewolproxy",
	Short: "Per-network Wake-on-LAN proxy",
	Long: `rewolproxy monitors the liveness of hosts on its network via ICMP and
exposes two HTTP endpoints:
  - GET  /status  Prometheus-style metrics (uptime, host up/down, WOL counters)
  - POST /wol     trigger a Wake-on-LAN signal for a configured host

It is the ground-truth tier; one or more proxies are aggregated by rewolserver.`,
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
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
