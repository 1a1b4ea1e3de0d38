package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"simcheck/internal/report"
)

const shared = "The mitochondria is the powerhouse of the cell and produces most of its energy supply."

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("simcheck %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), stderr.String()
}

func TestAnalyzeSaveAndHistory(t *testing.T) {
	ws := t.TempDir()
	docs := t.TempDir()
	a := writeFile(t, docs, "a.txt", "Intro. "+shared)
	b := writeFile(t, docs, "b.txt", shared+" Outro.")
	c := writeFile(t, docs, "c.md", "Volcanoes form where tectonic plates diverge or converge.")

	stdout, stderr := execute(t, "--workspace", ws, "--no-color", "analyze", "--json", "--save", a, b, c)

	var summary report.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if len(summary.Documents) != 3 || len(summary.Pairs) != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Provider != "disabled" {
		t.Fatalf("expected disabled provider by default, got %s", summary.Provider)
	}
	if !strings.Contains(stderr, "Saved run "+summary.RunID) {
		t.Fatalf("expected save notice, got %q", stderr)
	}
	for _, p := range []string{
		filepath.Join(ws, "runs", summary.RunID, "report.json"),
		filepath.Join(ws, "runs", summary.RunID, "summary.csv"),
		filepath.Join(ws, "simcheck.db"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}

	stdout, _ = execute(t, "--workspace", ws, "history")
	if !strings.Contains(stdout, summary.RunID) {
		t.Fatalf("expected run %s in history:\n%s", summary.RunID, stdout)
	}
}

func TestCompareCommand(t *testing.T) {
	ws := t.TempDir()
	docs := t.TempDir()
	a := writeFile(t, docs, "a.txt", shared)
	b := writeFile(t, docs, "b.txt", shared)

	stdout, _ := execute(t, "--workspace", ws, "--no-color", "compare", a, b)
	if !strings.Contains(stdout, "Similarity: 100.0% (High Risk)") {
		t.Fatalf("unexpected compare output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Matching segments: 1") {
		t.Fatalf("expected a single segment:\n%s", stdout)
	}
}
