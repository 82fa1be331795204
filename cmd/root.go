// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netdash",
	Short: "netdash - real-time network traffic capture and analysis agent",
	Long: `netdash captures live network packets, classifies them, evaluates
user-defined alert rules, and retains a bounded recent history that the
dashboard reads over a small HTTP API.

The capture loop runs on its own goroutine and never blocks on readers;
snapshots of the retention window are served concurrently with capture.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml",
		"config file path")
}
