package logging

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Archive keeps the log files of a workspace together with JSON snapshots of
// each analysis run, and can bundle them into a zip for sharing.
type Archive struct {
	mu      sync.Mutex
	rootDir string
	runsDir string
	logger  zerolog.Logger
}

type runSnapshot struct {
	CapturedAt string `json:"captured_at"`
	Trigger    string `json:"trigger"`
	RunID      string `json:"run_id"`
	Summary    any    `json:"summary"`
}

func NewArchive(rootDir string, logger zerolog.Logger) (*Archive, error) {
	runsDir := filepath.Join(rootDir, "runs")
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create runs dir: %w", err)
	}
	a := &Archive{
		rootDir: rootDir,
		runsDir: runsDir,
		logger:  logger,
	}
	a.Log("INFO", "BOOT", "log archive initialized", rootDir)
	return a, nil
}

func (a *Archive) RootDir() string {
	if a == nil {
		return ""
	}
	return a.rootDir
}

// Log maps the analysis levels onto zerolog levels: ANALYSIS is info, RISK is
// a warning.
func (a *Archive) Log(level, stage, message, detail string) {
	if a == nil {
		return
	}
	var ev *zerolog.Event
	switch strings.ToUpper(level) {
	case "DEBUG":
		ev = a.logger.Debug()
	case "RISK", "WARN":
		ev = a.logger.Warn()
	case "ERROR":
		ev = a.logger.Error()
	default:
		ev = a.logger.Info()
	}
	ev = ev.Str("stage", stage).Str("kind", strings.ToUpper(level))
	if strings.TrimSpace(detail) != "" {
		ev = ev.Str("detail", detail)
	}
	ev.Msg(message)
}

func (a *Archive) PersistRunSnapshot(trigger, runID string, summary any) (string, error) {
	if a == nil {
		return "", fmt.Errorf("log archive unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	name := time.Now().Format("20060102-150405")
	if id := sanitizeForFilename(runID); id != "" {
		name += "-" + id
	}
	trigger = sanitizeForFilename(trigger)
	if trigger != "" {
		name += "-" + trigger
	}
	path := filepath.Join(a.runsDir, name+".json")
	snap := runSnapshot{
		CapturedAt: time.Now().Format(time.RFC3339),
		Trigger:    trigger,
		RunID:      runID,
		Summary:    summary,
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write run snapshot: %w", err)
	}
	return path, nil
}

func (a *Archive) ExportZip(dest string) error {
	if a == nil {
		return fmt.Errorf("log archive unavailable")
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("destination path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)

	err = filepath.Walk(a.rootDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs != "" {
			if d, _ := filepath.Abs(dest); d == abs {
				return nil
			}
		}
		rel, err := filepath.Rel(a.rootDir, path)
		if err != nil {
			return err
		}
		w, err := zipWriter.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	})
	if err != nil {
		_ = zipWriter.Close()
		return fmt.Errorf("collect log files: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

func sanitizeForFilename(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	out = strings.ReplaceAll(out, "--", "-")
	return out
}
