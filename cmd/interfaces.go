package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/capture"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List capture-capable network interfaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		devs, err := capture.Interfaces()
		if err != nil {
			return fmt.Errorf("failed to list interfaces: %w", err)
		}
		for _, dev := range devs {
			fmt.Printf("%s", dev.Name)
			if dev.Description != "" {
				fmt.Printf("  (%s)", dev.Description)
			}
			fmt.Println()
			for _, addr := range dev.Addresses {
				fmt.Printf("    %s\n", addr.IP)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}
