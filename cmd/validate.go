package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(configFile); err != nil {
			return fmt.Errorf("config is invalid: %w", err)
		}
		fmt.Printf("%s is valid\n", configFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
