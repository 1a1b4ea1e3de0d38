package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"simcheck/internal/db"
	"simcheck/internal/workspace"
)

var (
	historyLimit int
	historyDB    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent saved runs",
	RunE:  runHistory,
}

var exportLogsCmd = &cobra.Command{
	Use:   "export-logs <dest.zip>",
	Short: "Bundle the workspace logs and run snapshots into a zip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve destination: %w", err)
		}
		if err := archive.ExportZip(dest); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logs exported to %s\n", dest)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "max runs")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "sqlite archive path (default from config)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := historyDB
	if dbPath == "" {
		dbPath = workspace.DatabasePath(root, cfg.Database)
	}
	runs, err := db.LatestRuns(dbPath, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved runs. Use 'simcheck analyze --save' to record one.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", r.Documents),
			r.Provider,
			fmt.Sprintf("%d", r.Threshold),
			fmt.Sprintf("%dms", r.DurationMs),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Run", "Started", "Documents", "Provider", "Threshold", "Duration").
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
	return nil
}
