package crossref

import "strings"

// RawReference is one entry in a work's reference list as returned by
// Crossref, reduced to the fields this tool uses.
type RawReference struct {
	// DOI is the extracted identifier. Always non-empty for references
	// returned by Client.References; entries without one are dropped.
	DOI string `json:"DOI"`

	// Unstructured is Crossref's free-text fallback for the reference,
	// used for display when no title can be resolved.
	Unstructured string `json:"unstructured,omitempty"`
}

// Author is one author of a work.
type Author struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
}

// Metadata is the extracted work metadata for a DOI. Immutable once fetched.
type Metadata struct {
	Authors []Author `json:"authors"`
	Year    int      `json:"year,omitempty"` // 0 if unknown
	Title   string   `json:"title,omitempty"`
}

// Format selects the citation representation requested from the DOI
// resolver via content negotiation.
type Format string

// Supported citation formats.
const (
	FormatBibTeX  Format = "BibTeX"
	FormatRIS     Format = "RIS"
	FormatEndNote Format = "EndNote"
)

// Formats lists the supported citation formats in display order.
var Formats = []Format{FormatBibTeX, FormatRIS, FormatEndNote}

// Accept returns the MIME type requested for this format, or "" for
// unrecognized formats.
func (f Format) Accept() string {
	switch f {
	case FormatBibTeX:
		return "application/x-bibtex"
	case FormatRIS:
		return "application/x-research-info-systems"
	case FormatEndNote:
		return "application/x-endnote-refer"
	}
	return ""
}

// Ext returns the file extension for this format ("txt" for unrecognized
// formats).
func (f Format) Ext() string {
	switch f {
	case FormatBibTeX:
		return "bib"
	case FormatRIS:
		return "ris"
	case FormatEndNote:
		return "enw"
	}
	return "txt"
}

// ParseFormat resolves a user-supplied format name, case-insensitively.
func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}
	return "", false
}

// worksMessage mirrors the subset of Crossref's /works/{doi} response this
// tool reads.
type worksMessage struct {
	Message struct {
		Title     []string   `json:"title"`
		Author    []Author   `json:"author"`
		Reference []refEntry `json:"reference"`

		Issued          dateParts `json:"issued"`
		PublishedPrint  dateParts `json:"published-print"`
		PublishedOnline dateParts `json:"published-online"`
		Created         dateParts `json:"created"`
	} `json:"message"`
}

type refEntry struct {
	DOI          string `json:"DOI"`
	Unstructured string `json:"unstructured"`
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the leading year component, or 0 if absent.
func (d dateParts) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}
