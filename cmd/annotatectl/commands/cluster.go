package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
)

// NewClusterCmd creates the cluster command. It reads a YAML list of tag
// labels and prints the edit-distance clusters, the same grouping the worker
// falls back to when no classifier provider is configured.
func NewClusterCmd() *cobra.Command {
	var threshold int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cluster <labels.yaml>",
		Short: "Cluster tag labels from a YAML file",
		Long:  "Read a YAML sequence of tag labels and print the label clusters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read labels file: %w", err)
			}

			var labels []string
			if err := yaml.Unmarshal(data, &labels); err != nil {
				return fmt.Errorf("parse labels file: %w", err)
			}
			if len(labels) == 0 {
				fmt.Println("No labels to cluster.")
				return nil
			}

			groups := annotation.ClusterLabels(labels, threshold)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			fmt.Printf("%d labels, %d groups:\n", len(labels), len(groups))
			for _, g := range groups {
				fmt.Printf("  %s\n", g.Name)
				for _, m := range g.Members {
					fmt.Printf("    - %s\n", m)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", annotation.DefaultClusterThreshold, "Edit-distance threshold for grouping")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print groups as JSON")
	return cmd
}
