package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
)

// spanSpec is one span as written in the YAML input. Offsets are bytes into
// the document body.
type spanSpec struct {
	ID    string `yaml:"id"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	TagID string `yaml:"tag_id"`
}

// NewSegmentsCmd creates the segments command. It renders a document body and
// a YAML list of spans into the segment sequence the API would return.
func NewSegmentsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "segments <document.txt> <spans.yaml>",
		Short: "Render a document and its spans into segments",
		Long:  "Read a document body and a YAML sequence of spans and print the rendered segment sequence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document file: %w", err)
			}

			specData, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read spans file: %w", err)
			}

			var specs []spanSpec
			if err := yaml.Unmarshal(specData, &specs); err != nil {
				return fmt.Errorf("parse spans file: %w", err)
			}

			spans := make([]*annotation.Span, 0, len(specs))
			for i, s := range specs {
				if s.Start < 0 || s.End <= s.Start {
					return fmt.Errorf("span %d: invalid range [%d, %d)", i, s.Start, s.End)
				}
				span := &annotation.Span{Start: s.Start, End: s.End}
				if s.ID != "" {
					span.ID, err = uuid.Parse(s.ID)
					if err != nil {
						return fmt.Errorf("span %d: invalid id: %w", i, err)
					}
				}
				if s.TagID != "" {
					span.TagID, err = uuid.Parse(s.TagID)
					if err != nil {
						return fmt.Errorf("span %d: invalid tag_id: %w", i, err)
					}
				}
				spans = append(spans, span)
			}

			// BuildSegments expects spans ordered by start offset.
			sort.SliceStable(spans, func(i, j int) bool {
				return spans[i].Start < spans[j].Start
			})

			segments := annotation.BuildSegments(string(body), spans)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(segments)
			}

			for i, seg := range segments {
				marker := " "
				if seg.Kind == annotation.SegmentHighlighted {
					marker = "*"
				}
				fmt.Printf("%3d %s %q\n", i, marker, seg.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print segments as JSON")
	return cmd
}
