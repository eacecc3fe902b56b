package doi

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxScanPages bounds the PDF scan; the DOI is almost always on page one.
const maxScanPages = 3

// ExtractFromPDF extracts a DOI from a PDF file, scanning the first few
// pages. Returns "" (not an error) when no DOI is found.
func ExtractFromPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := maxScanPages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if d := findDOI(text); d != "" {
			return d, nil
		}
	}

	return "", nil
}

// findDOI finds the first valid DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(d string) bool {
	if len(d) < 10 {
		return false
	}
	if !strings.HasPrefix(d, "10.") {
		return false
	}
	slashIdx := strings.Index(d, "/")
	return slashIdx != -1 && slashIdx < len(d)-1
}
