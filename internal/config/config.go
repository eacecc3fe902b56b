// Package config handles workspace and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace layout under the directory created by `refcart init`.
const (
	WorkspaceDir  = ".refcart"
	CacheDir      = "cache"
	SessionDBFile = "session.db"
)

// WorkspacePath returns the path to the .refcart directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir)
}

// SessionDBPath returns the path to the session database from a root path.
func SessionDBPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir, SessionDBFile)
}

// IsWorkspace checks if the given path contains a refcart workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a refcart workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a refcart workspace (no %s directory found; run refcart init)", WorkspaceDir)
		}
		abs = parent
	}
}

// InitWorkspace creates the workspace directories under root. It is
// idempotent.
func InitWorkspace(root string) error {
	if err := os.MkdirAll(CachePath(root), 0o755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	return nil
}
