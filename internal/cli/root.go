// Package cli provides the simcheck command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"simcheck/internal/config"
	"simcheck/internal/logging"
	"simcheck/internal/workspace"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	workspaceDir string
	verbose      bool
	noColor      bool

	root    string
	cfg     config.Config
	archive *logging.Archive
)

var rootCmd = &cobra.Command{
	Use:   "simcheck",
	Short: "Detect text overlap across a batch of documents",
	Long: `simcheck compares a small batch of documents against each other,
optionally checks them against an online search endpoint, and assigns
each one an overall similarity score and risk tier.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		return setup(cmd.ErrOrStderr())
	},
}

func setup(stderr io.Writer) error {
	var err error
	if workspaceDir != "" {
		root, err = workspace.EnsureAt(filepath.Clean(workspaceDir))
	} else {
		root, err = workspace.EnsureDefault()
	}
	if err != nil {
		return fmt.Errorf("workspace initialization failed: %w", err)
	}

	cfg, err = config.Load(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if noColor {
		cfg.Color = false
	}

	var extra []io.Writer
	if verbose {
		extra = append(extra, logging.Console(stderr))
	}
	if err := logging.Init(workspace.LogsDir(root), cfg.LogLevel, extra...); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	archive, err = logging.NewArchive(workspace.LogsDir(root), log.Logger)
	if err != nil {
		return fmt.Errorf("init log archive: %w", err)
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", os.Getenv("SIMCHECK_WORKSPACE"), "workspace directory (default ~/"+workspace.BaseDirName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr as well as the log file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportLogsCmd)
}
