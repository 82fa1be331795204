// Package main is the entry point for the netdash capture agent.
package main

import (
	"fmt"
	"os"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
