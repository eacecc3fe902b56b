package main

import (
	"context"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/refcart/internal/aggregate"
	"github.com/matsen/refcart/internal/config"
	"github.com/matsen/refcart/internal/crossref"
	"github.com/matsen/refcart/internal/doi"
	"github.com/matsen/refcart/internal/enrich"
	"github.com/matsen/refcart/internal/session"
	"github.com/matsen/refcart/internal/store"
)

// Per-seed reference limit bounds.
const (
	MinRefsPerSeed     = 5
	MaxRefsPerSeed     = 500
	DefaultRefsPerSeed = 100
)

var (
	fetchInput     string
	fetchPDF       string
	fetchFormat    string
	fetchMaxRefs   int
	fetchWorkers   int
	fetchSelectAll bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [seed...]",
	Short: "Fetch and deduplicate the references of one or more seed DOIs",
	Long: `Fetch the reference lists of the given seed DOIs from Crossref,
deduplicate them across seeds, and fetch a formatted citation for each
surviving reference. The completed batch replaces the stored session.

Seeds may be given as arguments, via --input as free-form text (newline,
comma, semicolon, or whitespace separated, bare DOIs or doi.org URLs),
or extracted from a PDF with --pdf.

Examples:
  refcart fetch 10.1016/j.stress.2025.100958
  refcart fetch https://doi.org/10.1/a 10.1/b --format RIS --max-refs 50
  refcart fetch --pdf paper.pdf --select-all`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchInput, "input", "", "Free-form seed text (DOIs or DOI URLs)")
	fetchCmd.Flags().StringVar(&fetchPDF, "pdf", "", "Extract a seed DOI from this PDF file")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", string(crossref.FormatBibTeX), "Citation format: BibTeX, RIS, or EndNote")
	fetchCmd.Flags().IntVar(&fetchMaxRefs, "max-refs", DefaultRefsPerSeed, "Maximum references per seed (5-500)")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", aggregate.DefaultWorkers(), "Parallel requests (4-32)")
	fetchCmd.Flags().BoolVar(&fetchSelectAll, "select-all", false, "Select every fetched item")
}

// FetchSeedError is the JSON form of a per-seed fetch failure.
type FetchSeedError struct {
	Seed  string `json:"seed"`
	Error string `json:"error"`
}

// FetchResult is the JSON output for the fetch command.
type FetchResult struct {
	Seeds      []string         `json:"seeds"`
	Format     string           `json:"format"`
	Items      []enrich.Item    `json:"items"`
	Total      int              `json:"total"`
	Dropped    int              `json:"dropped"`
	SeedErrors []FetchSeedError `json:"seed_errors,omitempty"`
	Message    string           `json:"message,omitempty"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	db, _ := openSessionStore()
	defer db.Close()

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	applyGlobalDefaults(cmd, cfg)

	format, ok := crossref.ParseFormat(fetchFormat)
	if !ok {
		exitWithError(ExitDataError, "unknown citation format %q (want BibTeX, RIS, or EndNote)", fetchFormat)
	}

	seeds, err := collectSeeds(args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if len(seeds) == 0 {
		exitWithError(ExitDataError, "no valid DOI or DOI URL in the input")
	}

	maxRefs := clampRefs(fetchMaxRefs)
	workers := aggregate.ClampWorkers(fetchWorkers)

	var opts []crossref.ClientOption
	if cfg.Mailto != "" {
		opts = append(opts, crossref.WithMailto(cfg.Mailto))
	}
	client := crossref.NewClient(opts...)

	ctx := context.Background()
	agg := aggregate.Aggregate(ctx, client, seeds, maxRefs, workers)
	enriched := enrich.Enrich(ctx, client, agg.Order, agg.Refs, agg.Sources, format, workers)

	sess := session.New()
	sess.StartNewBatch(seeds, format)
	sess.ReplaceItems(enriched.Items)
	if fetchSelectAll {
		sess.SelectAll()
	}

	snap := store.Snapshot{
		Seeds:    sess.Seeds(),
		Format:   string(sess.Format()),
		Items:    sess.Items(),
		Selected: sess.SelectedIDs(),
	}
	if err := db.Save(snap); err != nil {
		exitWithError(ExitError, "saving session: %v", err)
	}

	result := FetchResult{
		Seeds:   seeds,
		Format:  string(format),
		Items:   sess.Items(),
		Total:   len(sess.Items()),
		Dropped: enriched.Dropped,
	}
	for _, f := range agg.Failures {
		result.SeedErrors = append(result.SeedErrors, FetchSeedError{Seed: f.Seed, Error: f.Err.Error()})
	}
	switch {
	case agg.Empty():
		result.Message = "no references with DOIs were found for the given seeds"
	case result.Total == 0:
		result.Message = "no downloadable citations were found among the references"
	}

	if humanOutput {
		printFetchHuman(result)
		return nil
	}
	return outputJSON(result)
}

// collectSeeds assembles the normalized seed list from arguments, --input
// text, and an optional PDF.
func collectSeeds(args []string) ([]string, error) {
	parts := append([]string(nil), args...)
	if fetchInput != "" {
		parts = append(parts, fetchInput)
	}
	if fetchPDF != "" {
		d, err := doi.ExtractFromPDF(fetchPDF)
		if err != nil {
			return nil, err
		}
		if d != "" {
			parts = append(parts, d)
		}
	}
	return doi.Normalize(strings.Join(parts, "\n")), nil
}

// applyGlobalDefaults fills flag values from the global config where the
// user didn't set them explicitly.
func applyGlobalDefaults(cmd *cobra.Command, cfg *config.GlobalConfig) {
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		fetchFormat = cfg.Format
	}
	if !cmd.Flags().Changed("max-refs") && cfg.MaxRefs != 0 {
		fetchMaxRefs = cfg.MaxRefs
	}
	if !cmd.Flags().Changed("workers") && cfg.Workers != 0 {
		fetchWorkers = cfg.Workers
	}
}

// clampRefs clamps the per-seed reference limit to the supported range.
func clampRefs(n int) int {
	if n < MinRefsPerSeed {
		return MinRefsPerSeed
	}
	if n > MaxRefsPerSeed {
		return MaxRefsPerSeed
	}
	return n
}

func printFetchHuman(result FetchResult) {
	for _, e := range result.SeedErrors {
		outputHuman("warning: %s: %s\n", e.Seed, e.Error)
	}
	if result.Message != "" {
		outputHuman("%s\n", result.Message)
		return
	}

	outputHuman("Fetched %d references (%s):\n\n", result.Total, result.Format)
	for _, item := range result.Items {
		outputHuman("  [%d] %s\n", item.ID, item.Label)
		outputHuman("      %s (cited by %s)\n", item.DOI, strings.Join(item.Sources, ", "))
	}
	if result.Dropped > 0 {
		outputHuman("\n%d reference(s) could not be enriched and were dropped\n", result.Dropped)
	}
}
