package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitAndFindWorkspace(t *testing.T) {
	root := t.TempDir()

	if IsWorkspace(root) {
		t.Fatal("fresh dir reported as workspace")
	}

	if err := InitWorkspace(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !IsWorkspace(root) {
		t.Fatal("initialized dir not reported as workspace")
	}

	// Init is idempotent.
	if err := InitWorkspace(root); err != nil {
		t.Fatalf("second init: %v", err)
	}

	// FindWorkspace walks up from nested directories.
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != root {
		t.Errorf("found %q, want %q", found, root)
	}
}

func TestFindWorkspaceNotFound(t *testing.T) {
	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("expected error outside any workspace")
	}
}

func TestWorkspacePaths(t *testing.T) {
	root := "/tmp/x"
	if got := SessionDBPath(root); got != filepath.Join(root, ".refcart", "cache", "session.db") {
		t.Errorf("SessionDBPath = %q", got)
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing file yields an empty config, not an error.
	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.Mailto != "" {
		t.Errorf("missing file produced %+v", cfg)
	}

	confDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "mailto: lab@example.org\nformat: RIS\nmax_refs: 50\nworkers: 8\n"
	if err := os.WriteFile(filepath.Join(confDir, GlobalConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err = LoadGlobalConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mailto != "lab@example.org" || cfg.Format != "RIS" || cfg.MaxRefs != 50 || cfg.Workers != 8 {
		t.Errorf("config = %+v", cfg)
	}
}
