package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matsen/refcart/internal/crossref"
)

// fakeSource serves canned metadata and citations per DOI.
type fakeSource struct {
	meta     map[string]*crossref.Metadata
	metaErrs map[string]error
	citeErrs map[string]error
}

func (f *fakeSource) Metadata(ctx context.Context, doi string) (*crossref.Metadata, error) {
	if err := f.metaErrs[doi]; err != nil {
		return nil, err
	}
	if m, ok := f.meta[doi]; ok {
		return m, nil
	}
	return &crossref.Metadata{}, nil
}

func (f *fakeSource) Citation(ctx context.Context, doi string, format crossref.Format) (string, error) {
	if err := f.citeErrs[doi]; err != nil {
		return "", err
	}
	return "cite(" + doi + "," + string(format) + ")", nil
}

func TestEnrich(t *testing.T) {
	src := &fakeSource{meta: map[string]*crossref.Metadata{
		"10.1/a": {Authors: []crossref.Author{{Family: "Smith"}}, Year: 2020, Title: "Alpha"},
		"10.1/b": {Title: "Beta"},
	}}
	raw := map[string]crossref.RawReference{
		"10.1/a": {DOI: "10.1/a"},
		"10.1/b": {DOI: "10.1/b"},
	}
	sources := map[string][]string{
		"10.1/a": {"S1"},
		"10.1/b": {"S1", "S2"},
	}

	result := Enrich(context.Background(), src, []string{"10.1/a", "10.1/b"}, raw, sources, crossref.FormatRIS, 4)

	if result.Dropped != 0 {
		t.Errorf("dropped = %d, want 0", result.Dropped)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Items))
	}

	a := result.Items[0]
	if a.DOI != "10.1/a" {
		t.Errorf("items out of input order: %v", result.Items)
	}
	if a.Label != "Smith, 2020 — Alpha" {
		t.Errorf("label = %q", a.Label)
	}
	if a.Citation != "cite(10.1/a,RIS)" {
		t.Errorf("citation = %q", a.Citation)
	}
	if len(a.Sources) != 1 || a.Sources[0] != "S1" {
		t.Errorf("sources = %v", a.Sources)
	}

	if result.Items[1].Label != "Unknown, n.d. — Beta" {
		t.Errorf("label = %q", result.Items[1].Label)
	}
}

func TestEnrichDropsFailures(t *testing.T) {
	src := &fakeSource{
		meta:     map[string]*crossref.Metadata{"10.1/ok": {Title: "OK"}},
		metaErrs: map[string]error{"10.1/nometa": errors.New("boom")},
		citeErrs: map[string]error{"10.1/nocite": errors.New("boom")},
	}
	order := []string{"10.1/nometa", "10.1/ok", "10.1/nocite"}
	raw := map[string]crossref.RawReference{}
	sources := map[string][]string{
		"10.1/nometa": {"S1"},
		"10.1/ok":     {"S1"},
		"10.1/nocite": {"S1"},
	}

	result := Enrich(context.Background(), src, order, raw, sources, crossref.FormatBibTeX, 4)

	if len(result.Items) != 1 || result.Items[0].DOI != "10.1/ok" {
		t.Fatalf("items = %v, want only 10.1/ok", result.Items)
	}
	if result.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", result.Dropped)
	}
}

func TestBuildLabelTitleFallbacks(t *testing.T) {
	tests := []struct {
		name string
		meta *crossref.Metadata
		raw  crossref.RawReference
		want string
	}{
		{
			name: "metadata title",
			meta: &crossref.Metadata{Title: "The Title"},
			raw:  crossref.RawReference{Unstructured: "fallback"},
			want: "Unknown, n.d. — The Title",
		},
		{
			name: "unstructured fallback",
			meta: &crossref.Metadata{},
			raw:  crossref.RawReference{Unstructured: "Some raw citation text"},
			want: "Unknown, n.d. — Some raw citation text",
		},
		{
			name: "doi fallback",
			meta: &crossref.Metadata{},
			raw:  crossref.RawReference{},
			want: "Unknown, n.d. — 10.1/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildLabel(tt.meta, tt.raw, "10.1/x"); got != tt.want {
				t.Errorf("buildLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildLabelTruncation(t *testing.T) {
	longTitle := "A Very Long Title " + strings.Repeat("x", 100)
	meta := &crossref.Metadata{
		Authors: []crossref.Author{{Family: "Smith"}},
		Year:    2020,
		Title:   longTitle,
	}

	label := buildLabel(meta, crossref.RawReference{}, "10.1/x")

	if !strings.HasPrefix(label, "Smith, 2020 — ") {
		t.Fatalf("label = %q", label)
	}
	title := strings.TrimPrefix(label, "Smith, 2020 — ")
	if !strings.HasSuffix(title, "…") {
		t.Errorf("truncated title missing ellipsis: %q", title)
	}
	visible := []rune(strings.TrimSuffix(title, "…"))
	if len(visible) > MaxTitleLength {
		t.Errorf("title portion is %d chars, want <= %d", len(visible), MaxTitleLength)
	}
}

func TestAuthorsLabel(t *testing.T) {
	tests := []struct {
		name    string
		authors []crossref.Author
		want    string
	}{
		{"none", nil, "Unknown"},
		{"given only", []crossref.Author{{Given: "Ada"}}, "Unknown"},
		{"one", []crossref.Author{{Family: "Smith"}}, "Smith"},
		{"two", []crossref.Author{{Family: "Smith"}, {Family: "Jones"}}, "Smith & Jones"},
		{"three", []crossref.Author{{Family: "Smith"}, {Family: "Jones"}, {Family: "Lee"}}, "Smith et al."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authorsLabel(tt.authors); got != tt.want {
				t.Errorf("authorsLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShorten(t *testing.T) {
	if got := shorten("short"); got != "short" {
		t.Errorf("shorten(short) = %q", got)
	}

	// Trailing whitespace at the cut point is trimmed before the ellipsis.
	padded := strings.Repeat("a", MaxTitleLength-1) + "   tail"
	got := shorten(padded)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("shorten did not append ellipsis: %q", got)
	}
	if strings.Contains(got, " …") {
		t.Errorf("shorten left whitespace before the ellipsis: %q", got)
	}
}
