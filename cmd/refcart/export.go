package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refcart/internal/crossref"
	"github.com/matsen/refcart/internal/session"
)

var (
	exportOut     string
	exportSources []string
	exportStdout  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the selected citations to a file",
	Long: `Write the citations of the selected items, joined by blank lines, to a
file named after the active format (selected_references.bib/.ris/.enw)
or to the path given with --out.

Examples:
  refcart export
  refcart export --out refs.bib
  refcart export --source 10.1/a --stdout`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default selected_references.<ext>)")
	exportCmd.Flags().StringSliceVar(&exportSources, "source", nil, "Only export items cited by these seeds")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the citations to stdout instead of a file")
}

// ExportResult is the JSON output for the export command.
type ExportResult struct {
	File    string `json:"file,omitempty"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	db, _ := openSessionStore()
	defer db.Close()
	snap := loadSnapshot(db)

	sess := restoreSession(snap)
	sess.SetSourceFilter(exportSources)

	preview := sess.ExportPreview()
	if preview == "" {
		result := ExportResult{Message: "nothing selected; use refcart select or refcart select-all first"}
		if humanOutput {
			outputHuman("%s\n", result.Message)
			return nil
		}
		return outputJSON(result)
	}

	selected := 0
	for _, item := range session.FilterBySources(snap.Items, exportSources) {
		if sess.IsSelected(item.ID) {
			selected++
		}
	}

	if exportStdout {
		outputHuman("%s\n", preview)
		return nil
	}

	out := exportOut
	if out == "" {
		out = session.ExportFilename(crossref.Format(snap.Format))
	}
	if err := os.WriteFile(out, []byte(preview+"\n"), 0o644); err != nil {
		exitWithError(ExitError, "writing %s: %v", out, err)
	}

	result := ExportResult{File: out, Count: selected}
	if humanOutput {
		outputHuman("Wrote %d citation(s) to %s\n", result.Count, result.File)
		return nil
	}
	return outputJSON(result)
}
