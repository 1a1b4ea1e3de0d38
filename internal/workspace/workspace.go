package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"simcheck/internal/config"
)

const BaseDirName = "SimCheck"

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	paths := []string{
		filepath.Join(base, "configs"),
		filepath.Join(base, "runs"),
		filepath.Join(base, "logs"),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	if err := config.WriteDefault(SettingsPath(base)); err != nil {
		return "", err
	}
	return base, nil
}

func SettingsPath(root string) string {
	return filepath.Join(root, "configs", config.SettingsFile)
}

func LogsDir(root string) string {
	return filepath.Join(root, "logs")
}

// DatabasePath resolves a configured database path against the workspace.
func DatabasePath(root, configured string) string {
	if configured == "" || filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(root, configured)
}
