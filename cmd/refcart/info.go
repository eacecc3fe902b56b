package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refcart/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the stored session summary",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// InfoResult is the JSON output for the info command.
type InfoResult struct {
	Workspace string   `json:"workspace"`
	Seeds     []string `json:"seeds"`
	Format    string   `json:"format"`
	Items     int      `json:"items"`
	Selected  int      `json:"selected"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	db, root := openSessionStore()
	defer db.Close()
	snap := loadSnapshot(db)

	result := InfoResult{
		Workspace: config.WorkspacePath(root),
		Seeds:     snap.Seeds,
		Format:    snap.Format,
		Items:     len(snap.Items),
		Selected:  len(snap.Selected),
	}

	if humanOutput {
		outputHuman("Workspace: %s\n", result.Workspace)
		outputHuman("Seeds:     %s\n", strings.Join(result.Seeds, ", "))
		outputHuman("Format:    %s\n", result.Format)
		outputHuman("Items:     %d (%d selected)\n", result.Items, result.Selected)
		return nil
	}
	return outputJSON(result)
}
