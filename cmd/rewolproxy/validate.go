package main

import (
	"fmt"
	"os"

	"github.com/rewol/rewol/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without starting the proxy.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	parser := config.NewParser()
	cfg, err := parser.LoadProxyFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Port: %d\n", cfg.Port)
	fmt.Printf("  Check interval: %s\n", cfg.CheckInterval)
	fmt.Printf("  Probe timeout: %s\n", cfg.ProbeTimeout)
	fmt.Println()
	fmt.Println("Hosts:")
	for _, h := range cfg.Hosts {
		fmt.Printf("  %s  %s  %s (broadcast %s)\n", h.Name, h.MACAddress, h.TargetAddr, h.Broadcast)
	}

	return nil
}
