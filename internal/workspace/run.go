package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type RunInfo struct {
	ID         string
	Root       string
	ReportPath string
	CSVPath    string
}

func CreateRun(workspaceRoot, runID string) (*RunInfo, error) {
	id := sanitizeRunID(runID)
	runRoot := filepath.Join(workspaceRoot, "runs", id)
	if err := os.MkdirAll(runRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &RunInfo{
		ID:         id,
		Root:       runRoot,
		ReportPath: filepath.Join(runRoot, "report.json"),
		CSVPath:    filepath.Join(runRoot, "summary.csv"),
	}, nil
}

func SaveReport(path string, report any) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func sanitizeRunID(id string) string {
	base := filepath.Base(strings.TrimSpace(id))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "run"
	}
	return strings.ReplaceAll(base, "..", "")
}
