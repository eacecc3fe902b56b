package doi

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single DOI",
			input: "10.1016/j.stress.2025.100958",
			want:  []string{"10.1016/j.stress.2025.100958"},
		},
		{
			name:  "DOI URL",
			input: "https://doi.org/10.1/a",
			want:  []string{"10.1/a"},
		},
		{
			name:  "mixed separators with duplicate",
			input: "10.1/a, 10.1/a\n10.1/b",
			want:  []string{"10.1/a", "10.1/b"},
		},
		{
			name:  "semicolons and tabs",
			input: "10.1/a;10.1/b\t10.1/c",
			want:  []string{"10.1/a", "10.1/b", "10.1/c"},
		},
		{
			name:  "URL and bare form of same DOI deduplicate",
			input: "https://doi.org/10.1/a 10.1/a",
			want:  []string{"10.1/a"},
		},
		{
			name:  "whitespace only",
			input: "   \n\t  ",
			want:  nil,
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1234/example", "10.1234/example"},
		{"  10.1234/example  ", "10.1234/example"},
		{"https://doi.org/10.1234/example", "10.1234/example"},
		{"http://dx.doi.org/10.1234/example", "10.1234/example"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Extract(tt.input); got != tt.want {
			t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain DOI in text",
			text: "This paper (doi: 10.1093/sysbio/syy032) shows...",
			want: "10.1093/sysbio/syy032",
		},
		{
			name: "trailing punctuation stripped",
			text: "See 10.1093/sysbio/syy032.",
			want: "10.1093/sysbio/syy032",
		},
		{
			name: "no DOI",
			text: "Nothing to see here.",
			want: "",
		},
		{
			name: "too short to be valid",
			text: "10.1/x",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
