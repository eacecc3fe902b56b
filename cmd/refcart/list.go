package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refcart/internal/enrich"
	"github.com/matsen/refcart/internal/session"
)

var listSources []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fetched references with selection marks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSliceVar(&listSources, "source", nil, "Only show items cited by these seeds")
}

// ListItem is one reference in the list output.
type ListItem struct {
	ID       int      `json:"id"`
	DOI      string   `json:"doi"`
	Label    string   `json:"label"`
	Sources  []string `json:"sources"`
	Selected bool     `json:"selected"`
}

// ListResult is the JSON output for the list command.
type ListResult struct {
	Format   string     `json:"format"`
	Items    []ListItem `json:"items"`
	Total    int        `json:"total"`
	Selected int        `json:"selected"`
}

func runList(cmd *cobra.Command, args []string) error {
	db, _ := openSessionStore()
	defer db.Close()
	snap := loadSnapshot(db)

	selected := make(map[int]bool, len(snap.Selected))
	for _, id := range snap.Selected {
		selected[id] = true
	}

	items := session.FilterBySources(snap.Items, listSources)

	result := ListResult{Format: snap.Format, Items: make([]ListItem, 0, len(items))}
	for _, item := range items {
		result.Items = append(result.Items, ListItem{
			ID:       item.ID,
			DOI:      item.DOI,
			Label:    item.Label,
			Sources:  item.Sources,
			Selected: selected[item.ID],
		})
		if selected[item.ID] {
			result.Selected++
		}
	}
	result.Total = len(result.Items)

	if humanOutput {
		printListHuman(result, snap.Items)
		return nil
	}
	return outputJSON(result)
}

func printListHuman(result ListResult, all []enrich.Item) {
	if len(all) == 0 {
		outputHuman("No references fetched yet. Run refcart fetch first.\n")
		return
	}
	for _, item := range result.Items {
		mark := " "
		if item.Selected {
			mark = "x"
		}
		outputHuman("  [%s] %3d  %s\n", mark, item.ID, item.Label)
		outputHuman("            %s (cited by %s)\n", item.DOI, strings.Join(item.Sources, ", "))
	}
	outputHuman("\n%d item(s), %d selected\n", result.Total, result.Selected)
}
