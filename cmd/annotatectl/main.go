package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyu1c/abstract-analysis-Public/cmd/annotatectl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "annotatectl",
		Short: "Offline tooling for the annotation service",
		Long:  "CLI tool for clustering tag labels and rendering document segments without a running server",
	}

	rootCmd.AddCommand(commands.NewClusterCmd())
	rootCmd.AddCommand(commands.NewSegmentsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
