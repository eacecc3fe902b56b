// Package store persists the CLI's session snapshot between invocations:
// the current batch's items, selection, seed order, and active format.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matsen/refcart/internal/enrich"
)

// DB wraps the SQLite session database.
type DB struct {
	db *sql.DB
}

// Snapshot is the persisted session state.
type Snapshot struct {
	Seeds    []string      `json:"seeds"`
	Format   string        `json:"format"`
	Items    []enrich.Item `json:"items"`
	Selected []int         `json:"selected"`
}

// Open opens or creates the session database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the session schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Batch-level state, one row per key
		CREATE TABLE IF NOT EXISTS batch (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- Items of the current batch
		CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			doi TEXT NOT NULL,
			label TEXT NOT NULL,
			citation TEXT NOT NULL,
			sources_json TEXT NOT NULL,
			selected INTEGER NOT NULL DEFAULT 0
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored session with the given snapshot, wholesale.
// A new fetch batch overwrites everything from any prior batch, so stale
// items or selections can never leak across batches.
func (d *DB) Save(snap Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM batch`); err != nil {
		return fmt.Errorf("clearing batch state: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	seedsJSON, err := json.Marshal(snap.Seeds)
	if err != nil {
		return fmt.Errorf("marshaling seeds: %w", err)
	}
	batchState := map[string]string{
		"seeds":  string(seedsJSON),
		"format": snap.Format,
	}
	for key, value := range batchState {
		if _, err := tx.Exec(`INSERT INTO batch (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("writing batch state: %w", err)
		}
	}

	selected := make(map[int]bool, len(snap.Selected))
	for _, id := range snap.Selected {
		selected[id] = true
	}

	for _, item := range snap.Items {
		sourcesJSON, err := json.Marshal(item.Sources)
		if err != nil {
			return fmt.Errorf("marshaling sources: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO items (id, doi, label, citation, sources_json, selected) VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, item.DOI, item.Label, item.Citation, string(sourcesJSON), boolToInt(selected[item.ID]),
		)
		if err != nil {
			return fmt.Errorf("writing item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored session. An empty database yields an empty
// snapshot, not an error.
func (d *DB) Load() (Snapshot, error) {
	var snap Snapshot

	rows, err := d.db.Query(`SELECT key, value FROM batch`)
	if err != nil {
		return snap, fmt.Errorf("reading batch state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return snap, fmt.Errorf("scanning batch state: %w", err)
		}
		switch key {
		case "seeds":
			if err := json.Unmarshal([]byte(value), &snap.Seeds); err != nil {
				return snap, fmt.Errorf("parsing seeds: %w", err)
			}
		case "format":
			snap.Format = value
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("reading batch state: %w", err)
	}

	itemRows, err := d.db.Query(
		`SELECT id, doi, label, citation, sources_json, selected FROM items ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("reading items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item enrich.Item
		var sourcesJSON string
		var sel int
		if err := itemRows.Scan(&item.ID, &item.DOI, &item.Label, &item.Citation, &sourcesJSON, &sel); err != nil {
			return snap, fmt.Errorf("scanning item: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &item.Sources); err != nil {
			return snap, fmt.Errorf("parsing item sources: %w", err)
		}
		snap.Items = append(snap.Items, item)
		if sel != 0 {
			snap.Selected = append(snap.Selected, item.ID)
		}
	}
	if err := itemRows.Err(); err != nil {
		return snap, fmt.Errorf("reading items: %w", err)
	}

	return snap, nil
}

// ReplaceSelection sets the stored selection to exactly the given ids.
func (d *DB) ReplaceSelection(ids []int) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE items SET selected = 0`); err != nil {
		return fmt.Errorf("clearing selection: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE items SET selected = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("selecting item %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
