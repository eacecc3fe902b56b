// Package enrich turns deduplicated DOIs into exportable items by fetching
// metadata and formatted citation text for each.
package enrich

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/matsen/refcart/internal/crossref"
)

// Item is one exportable reference: a deduplicated DOI with its display
// label, citation text, and the seeds that cited it. IDs are assigned by
// the session once the whole batch has completed, not here.
type Item struct {
	ID       int      `json:"id"`
	DOI      string   `json:"doi"`
	Label    string   `json:"label"`
	Citation string   `json:"citation"`
	Sources  []string `json:"sources"`
}

// Source provides per-DOI metadata and citation lookups.
type Source interface {
	Metadata(ctx context.Context, doi string) (*crossref.Metadata, error)
	Citation(ctx context.Context, doi string, format crossref.Format) (string, error)
}

// Result is the output of one enrichment round.
type Result struct {
	// Items holds the successfully enriched references, in the input
	// DOI order. IDs are unset.
	Items []Item

	// Dropped counts DOIs whose metadata or citation lookup failed.
	// Failures at this layer are swallowed; a DOI that cannot be
	// enriched simply never becomes an item.
	Dropped int
}

// Enrich fetches metadata and a formatted citation for every DOI in order,
// in parallel with at most workers concurrent DOIs, and builds items for
// the ones where both lookups succeed. raw supplies the fallback display
// text and sources the provenance attached to each item.
func Enrich(ctx context.Context, src Source, order []string, raw map[string]crossref.RawReference, sources map[string][]string, format crossref.Format, workers int) Result {
	if workers < 1 {
		workers = 1
	}

	items := make([]*Item, len(order))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, doi := range order {
		wg.Add(1)
		go func(idx int, d string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore
			items[idx] = fetchItem(ctx, src, d, raw[d], sources[d], format)
		}(i, doi)
	}

	wg.Wait()

	result := Result{}
	for _, item := range items {
		if item == nil {
			result.Dropped++
			continue
		}
		result.Items = append(result.Items, *item)
	}
	return result
}

// fetchItem builds one item, or nil if either lookup fails.
func fetchItem(ctx context.Context, src Source, doi string, raw crossref.RawReference, seeds []string, format crossref.Format) *Item {
	meta, err := src.Metadata(ctx, doi)
	if err != nil {
		return nil
	}

	citation, err := src.Citation(ctx, doi, format)
	if err != nil {
		return nil
	}

	return &Item{
		DOI:      doi,
		Label:    buildLabel(meta, raw, doi),
		Citation: citation,
		Sources:  seeds,
	}
}

// MaxTitleLength is the display cutoff for the title portion of a label.
const MaxTitleLength = 90

// buildLabel renders the "{authors}, {year} — {title}" display label.
func buildLabel(meta *crossref.Metadata, raw crossref.RawReference, doi string) string {
	year := "n.d."
	if meta.Year != 0 {
		year = strconv.Itoa(meta.Year)
	}

	title := meta.Title
	if title == "" {
		title = raw.Unstructured
	}
	if title == "" {
		title = doi
	}

	return authorsLabel(meta.Authors) + ", " + year + " — " + shorten(title)
}

// authorsLabel summarizes the author list by family names: "Unknown" when
// none, the single name, "A & B" for two, "A et al." for three or more.
func authorsLabel(authors []crossref.Author) string {
	var fams []string
	for _, a := range authors {
		if a.Family != "" {
			fams = append(fams, a.Family)
		}
	}

	switch len(fams) {
	case 0:
		return "Unknown"
	case 1:
		return fams[0]
	case 2:
		return fams[0] + " & " + fams[1]
	}
	return fams[0] + " et al."
}

// shorten truncates s to MaxTitleLength characters, trimming trailing
// whitespace and appending a single ellipsis when cut.
func shorten(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxTitleLength {
		return s
	}
	return strings.TrimRight(string(runes[:MaxTitleLength]), " \t\n") + "…"
}
