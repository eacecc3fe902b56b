package main

import (
	"os"

	"github.com/matsen/refcart/internal/config"
	"github.com/matsen/refcart/internal/store"
)

// mustFindWorkspace locates the enclosing workspace or exits.
func mustFindWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindWorkspace(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// openSessionStore opens the session database of the enclosing workspace
// or exits. It also returns the workspace root.
func openSessionStore() (*store.DB, string) {
	root := mustFindWorkspace()
	db, err := store.Open(config.SessionDBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening session store: %v", err)
	}
	return db, root
}

// loadSnapshot loads the stored session snapshot or exits.
func loadSnapshot(db *store.DB) store.Snapshot {
	snap, err := db.Load()
	if err != nil {
		exitWithError(ExitError, "loading session: %v", err)
	}
	return snap
}
