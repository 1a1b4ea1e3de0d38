package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"simcheck/internal/align"
	"simcheck/internal/compare"
	"simcheck/internal/ingest"
	"simcheck/internal/report"
	"simcheck/internal/risk"
)

var compareThreshold int

var compareCmd = &cobra.Command{
	Use:   "compare <fileA> <fileB>",
	Short: "Show the similarity and matching segments of two documents",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().IntVarP(&compareThreshold, "threshold", "t", 0, "minimum segment length in characters (exclusive)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	docs := make([]*compare.Document, 0, 2)
	for _, path := range args {
		parsed, err := ingest.ParseFile(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		docs = append(docs, compare.NewDocument(parsed.Title, path, parsed.Text))
	}

	opts := align.Options{Threshold: cfg.Threshold}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = compareThreshold
	}
	res := align.AlignWithOptions(docs[0].NormalizedText(), docs[1].NormalizedText(), opts)
	archive.Log("ANALYSIS", "CLI", "pair compared", fmt.Sprintf("a=%q b=%q ratio=%.2f segments=%d", args[0], args[1], res.Ratio, len(res.Segments)))

	out := cmd.OutOrStdout()
	tier := risk.Classify(res.Ratio)
	fmt.Fprintf(out, "%s <-> %s\n", docs[0].Filename, docs[1].Filename)
	fmt.Fprintf(out, "Similarity: %.1f%% (%s)\n", res.Ratio, report.TierLabel(tier))
	fmt.Fprintf(out, "Matching segments: %d\n", len(res.Segments))
	for i, seg := range res.Segments {
		fmt.Fprintf(out, "  %d. [a:%d b:%d len:%d] %q\n", i+1, seg.StartInA, seg.StartInB, seg.Length, seg.Text)
	}
	return nil
}
