// Package session holds the working set of a fetch batch: items, the user's
// selection, the active citation format, and the seed order. Every mutation
// goes through a named operation; there are no ambient globals.
package session

import (
	"sort"
	"strings"

	"github.com/matsen/refcart/internal/crossref"
	"github.com/matsen/refcart/internal/enrich"
)

// ExportBasename is the fixed basename of exported citation files.
const ExportBasename = "selected_references"

// Session is the mutable per-batch state. It is not safe for concurrent
// use; the fetch flow completes all parallel work before touching it.
type Session struct {
	items        []enrich.Item
	selected     map[int]bool
	format       crossref.Format
	seeds        []string
	sourceFilter []string
}

// New creates an empty session.
func New() *Session {
	return &Session{selected: make(map[int]bool)}
}

// StartNewBatch resets the session for a new fetch: items and selection are
// cleared, and the given format and seed order become active.
func (s *Session) StartNewBatch(seeds []string, format crossref.Format) {
	s.items = nil
	s.selected = make(map[int]bool)
	s.format = format
	s.seeds = append([]string(nil), seeds...)
	s.sourceFilter = nil
}

// ReplaceItems installs the completed batch's items and assigns their ids
// sequentially. IDs are positional within the completed batch only; any
// previous selection is already gone via StartNewBatch.
func (s *Session) ReplaceItems(items []enrich.Item) {
	s.items = append([]enrich.Item(nil), items...)
	for i := range s.items {
		s.items[i].ID = i
	}
}

// Items returns the current batch's items.
func (s *Session) Items() []enrich.Item {
	return s.items
}

// Seeds returns the seed order recorded for the current batch.
func (s *Session) Seeds() []string {
	return s.seeds
}

// Format returns the active citation format.
func (s *Session) Format() crossref.Format {
	return s.format
}

// SetSelection replaces the selection with the given ids. Ids not present
// in the current items are dropped.
func (s *Session) SetSelection(ids []int) {
	s.selected = make(map[int]bool)
	s.Select(ids...)
}

// Select adds the given ids to the selection, ignoring unknown ids.
func (s *Session) Select(ids ...int) {
	for _, id := range ids {
		if s.hasItem(id) {
			s.selected[id] = true
		}
	}
}

func (s *Session) hasItem(id int) bool {
	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Unselect removes the given ids from the selection.
func (s *Session) Unselect(ids ...int) {
	for _, id := range ids {
		delete(s.selected, id)
	}
}

// SelectAll selects every current item.
func (s *Session) SelectAll() {
	for _, item := range s.items {
		s.selected[item.ID] = true
	}
}

// ClearAll empties the selection.
func (s *Session) ClearAll() {
	s.selected = make(map[int]bool)
}

// SelectedIDs returns the selected ids in ascending order.
func (s *Session) SelectedIDs() []int {
	ids := make([]int, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsSelected reports whether the given item id is selected.
func (s *Session) IsSelected(id int) bool {
	return s.selected[id]
}

// SetSourceFilter records the seeds used by the read-side source filter.
// An empty filter passes everything.
func (s *Session) SetSourceFilter(seeds []string) {
	s.sourceFilter = append([]string(nil), seeds...)
}

// SourceFilter returns the active source filter.
func (s *Session) SourceFilter() []string {
	return s.sourceFilter
}

// FilterBySources returns the items whose provenance intersects
// selectedSeeds. An empty or nil filter passes all items.
func FilterBySources(items []enrich.Item, selectedSeeds []string) []enrich.Item {
	if len(selectedSeeds) == 0 {
		return items
	}

	wanted := make(map[string]bool, len(selectedSeeds))
	for _, s := range selectedSeeds {
		wanted[s] = true
	}

	var out []enrich.Item
	for _, item := range items {
		for _, src := range item.Sources {
			if wanted[src] {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// ExportPreview returns the joined citation text of the selected items that
// pass the current source filter, in item-list order, separated by blank
// lines. An empty selection yields an empty string.
func (s *Session) ExportPreview() string {
	var citations []string
	for _, item := range FilterBySources(s.items, s.sourceFilter) {
		if s.selected[item.ID] {
			citations = append(citations, item.Citation)
		}
	}
	return strings.Join(citations, "\n\n")
}

// ExportFilename returns the download filename for a format:
// selected_references.bib/.ris/.enw, or .txt for unrecognized formats.
func ExportFilename(format crossref.Format) string {
	return ExportBasename + "." + format.Ext()
}
