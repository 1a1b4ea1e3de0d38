package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"simcheck/internal/batch"
	"simcheck/internal/db"
	"simcheck/internal/external"
	"simcheck/internal/report"
	"simcheck/internal/workspace"
)

var (
	analyzeOnline    bool
	analyzeProvider  string
	analyzeThreshold int
	analyzeWorkers   int
	analyzeJSON      bool
	analyzeCSV       string
	analyzeDB        string
	analyzeSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file> <file> [file...]",
	Short: "Compare a batch of documents and score their risk",
	Long: `Compare every pair of documents in the batch, optionally check each one
online, and print a per-document risk report.

Supported formats: .pdf, .docx, .txt, .md

Examples:
  simcheck analyze essay1.pdf essay2.docx essay3.txt
  simcheck analyze --online *.pdf
  simcheck analyze --json --save a.txt b.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeOnline, "online", false, "check documents against the configured web search endpoint")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "external provider: disabled, mock or web (overrides config)")
	analyzeCmd.Flags().IntVarP(&analyzeThreshold, "threshold", "t", 0, "minimum segment length in characters (exclusive)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "parallel comparisons (0 = number of CPUs)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the JSON report instead of text")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "write a CSV summary to this path")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "sqlite archive path (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "save the report under the workspace and record the run in the archive")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := batch.Options{
		MaxDocuments: cfg.MaxDocuments,
		Threshold:    cfg.Threshold,
		Workers:      cfg.Workers,
		Logger:       archive,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = analyzeThreshold
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = analyzeWorkers
	}

	b := batch.New(opts)
	for _, path := range args {
		if _, err := b.AddFile(path); err != nil {
			if errors.Is(err, batch.ErrBatchFull) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %v\n", path, err)
		}
	}

	mode := cfg.External.Mode
	if analyzeOnline {
		mode = external.ModeWeb
	}
	if analyzeProvider != "" {
		mode = analyzeProvider
	}
	provider, err := external.New(mode, cfg.WebSearch())
	if err != nil {
		return fmt.Errorf("init external provider: %w", err)
	}

	analysis, err := b.Analyze(ctx, provider)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	summary := report.Build(analysis)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		if err := report.WriteJSON(out, summary); err != nil {
			return err
		}
	} else {
		textOpts := report.DefaultTextOptions()
		textOpts.Color = cfg.Color
		textOpts.SegmentDisplayMin = cfg.SegmentDisplayMin
		if err := report.WriteText(out, summary, textOpts); err != nil {
			return err
		}
	}

	if analyzeCSV != "" {
		if err := writeCSVFile(analyzeCSV, summary); err != nil {
			return err
		}
	}

	if analyzeSave {
		run, err := workspace.CreateRun(root, summary.RunID)
		if err != nil {
			return err
		}
		if err := workspace.SaveReport(run.ReportPath, summary); err != nil {
			return err
		}
		if err := writeCSVFile(run.CSVPath, summary); err != nil {
			return err
		}
		dbPath := analyzeDB
		if dbPath == "" {
			dbPath = workspace.DatabasePath(root, cfg.Database)
		}
		if err := db.PersistRun(dbPath, summary); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		if _, err := archive.PersistRunSnapshot("analyze", summary.RunID, summary); err != nil {
			archive.Log("RISK", "CLI", "run snapshot failed", err.Error())
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s to %s\n", summary.RunID, run.Root)
	}
	return nil
}

func writeCSVFile(path string, s report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
