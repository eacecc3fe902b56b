// Package doi handles DOI parsing and normalization.
package doi

import (
	"net/url"
	"strings"
)

// Normalize parses free-form text into an ordered, deduplicated list of DOIs.
// Tokens are split on any run of newlines, commas, semicolons, tabs, and
// spaces. DOI resolver URLs (anything containing "doi.org") are reduced to
// their path with the leading slash stripped; other tokens pass through
// trimmed. Duplicates keep their first-seen position.
func Normalize(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', ',', ';', '\t', ' ':
			return true
		}
		return false
	})

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens {
		id := Extract(tok)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Extract normalizes a single token to a bare DOI. A DOI resolver URL
// (e.g. https://doi.org/10.1234/x) becomes its path without the leading
// slash; anything else is returned trimmed.
func Extract(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if strings.Contains(token, "doi.org") {
		if u, err := url.Parse(token); err == nil {
			return strings.TrimPrefix(u.Path, "/")
		}
	}
	return token
}
