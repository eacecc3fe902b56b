package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/refcart/internal/crossref"
	"github.com/matsen/refcart/internal/session"
	"github.com/matsen/refcart/internal/store"
)

var selectCmd = &cobra.Command{
	Use:   "select <id...>",
	Short: "Add items to the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(args, func(sess *session.Session, ids []int) {
			sess.Select(ids...)
		})
	},
}

var unselectCmd = &cobra.Command{
	Use:   "unselect <id...>",
	Short: "Remove items from the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(args, func(sess *session.Session, ids []int) {
			sess.Unselect(ids...)
		})
	},
}

var selectAllCmd = &cobra.Command{
	Use:   "select-all",
	Short: "Select every fetched item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(nil, func(sess *session.Session, _ []int) {
			sess.SelectAll()
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(nil, func(sess *session.Session, _ []int) {
			sess.ClearAll()
		})
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(unselectCmd)
	rootCmd.AddCommand(selectAllCmd)
	rootCmd.AddCommand(clearCmd)
}

// SelectionResult is the JSON output for selection commands.
type SelectionResult struct {
	Selected []int `json:"selected"`
	Total    int   `json:"total"`
}

// mutateSelection loads the stored session, applies op with the parsed ids,
// and persists the new selection.
func mutateSelection(args []string, op func(*session.Session, []int)) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db, _ := openSessionStore()
	defer db.Close()
	snap := loadSnapshot(db)

	sess := restoreSession(snap)
	op(sess, ids)

	if err := db.ReplaceSelection(sess.SelectedIDs()); err != nil {
		exitWithError(ExitError, "saving selection: %v", err)
	}

	result := SelectionResult{Selected: sess.SelectedIDs(), Total: len(snap.Items)}
	if humanOutput {
		outputHuman("%d of %d item(s) selected\n", len(result.Selected), result.Total)
		return nil
	}
	return outputJSON(result)
}

// restoreSession rebuilds an in-memory session from a stored snapshot.
// Stored items are in id order, so the positional id assignment in
// ReplaceItems reproduces the stored ids.
func restoreSession(snap store.Snapshot) *session.Session {
	sess := session.New()
	sess.StartNewBatch(snap.Seeds, crossref.Format(snap.Format))
	sess.ReplaceItems(snap.Items)
	sess.SetSelection(snap.Selected)
	return sess
}

// parseIDs parses item ids from command arguments.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
