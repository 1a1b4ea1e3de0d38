package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"simcheck/internal/config"
)

func TestEnsureAtCreatesLayout(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	root, err := EnsureAt(base)
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	for _, p := range []string{
		filepath.Join(root, "configs"),
		filepath.Join(root, "runs"),
		LogsDir(root),
		SettingsPath(root),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected path to exist %s: %v", p, err)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("load written settings: %v", err)
	}
	if cfg.Threshold != config.Default().Threshold {
		t.Fatalf("expected default threshold, got %d", cfg.Threshold)
	}
}

func TestEnsureAtKeepsExistingSettings(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	custom := []byte("threshold = 35\n")
	if err := os.WriteFile(SettingsPath(base), custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureAt(base); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	raw, err := os.ReadFile(SettingsPath(base))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != string(custom) {
		t.Fatalf("expected settings untouched, got %q", raw)
	}
}

func TestCreateRunAndSaveReport(t *testing.T) {
	root, err := EnsureAt(t.TempDir())
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	run, err := CreateRun(root, "../ab12cd34")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.ID != "ab12cd34" || filepath.Dir(run.Root) != filepath.Join(root, "runs") {
		t.Fatalf("unexpected run info: %+v", run)
	}

	if err := SaveReport(run.ReportPath, map[string]int{"documents": 3}); err != nil {
		t.Fatalf("save report: %v", err)
	}
	raw, err := os.ReadFile(run.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded["documents"] != 3 {
		t.Fatalf("unexpected report %q: %v", raw, err)
	}
}

func TestDatabasePath(t *testing.T) {
	if got := DatabasePath("/ws", "simcheck.db"); got != filepath.Join("/ws", "simcheck.db") {
		t.Fatalf("unexpected relative resolution: %s", got)
	}
	if got := DatabasePath("/ws", "/var/db/x.db"); got != "/var/db/x.db" {
		t.Fatalf("expected absolute path untouched, got %s", got)
	}
}
