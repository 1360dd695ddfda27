package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mila-iqia/bibmerge/internal/align"
	"github.com/mila-iqia/bibmerge/internal/paper"
)

// PDFWeight is the trust weight of PDF-extracted metadata: low enough
// that any API-backed source overrides it, but above the discard band so
// it survives when it is the only candidate.
const PDFWeight = -5.0

// pdfScanPages is how many leading pages are scanned for a DOI.
const pdfScanPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// FromPDF produces a low-confidence candidate from a PDF file by
// scanning the first pages for a DOI and taking the first substantial
// line as the title. The entity key is the DOI when one is found,
// otherwise a slug of the title.
func FromPDF(path string) (Candidate, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	maxPages := pdfScanPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var doi, title string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi == "" {
			doi = findDOI(text)
		}
		if title == "" && i == 1 {
			title = guessTitle(text)
		}
		if doi != "" && title != "" {
			break
		}
	}

	if doi == "" && title == "" {
		return Candidate{}, fmt.Errorf("no DOI or title found in %s", path)
	}

	p := paper.Paper{Title: title}
	key := doi
	if doi != "" {
		p.Links = []paper.Link{{Type: "doi", Ref: doi}}
	} else {
		key = align.NormalizeName(title)
	}
	p.Key = key

	return Candidate{
		Key:    key,
		Origin: "pdf:" + path,
		Weight: PDFWeight,
		Paper:  p,
	}, nil
}

// findDOI returns the first valid DOI in the text, stripped of trailing
// punctuation.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// guessTitle returns the first substantial line of a page's text,
// skipping obvious header and footer lines.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
