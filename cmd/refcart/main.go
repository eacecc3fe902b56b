// Package main provides the refcart CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refcart",
	Short: "Fetch, pick, and export the references of scholarly works",
	Long: `refcart fetches the bibliographic references of one or more seed DOIs
from Crossref, deduplicates them across seeds while tracking which seed
cited what, enriches each with a formatted citation (BibTeX, RIS, or
EndNote), and exports the ones you pick as a citation file.

The working set lives in a .refcart/ workspace so fetch, select, and
export can run as separate commands. All commands output JSON by default
for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
