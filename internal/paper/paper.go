// Package paper defines the bibliographic domain types the
// reconciliation engine operates on.
package paper

// Paper represents one academic paper as assembled from one or more
// candidate sources.
type Paper struct {
	// Key is the internal stable entity key candidates are folded under.
	Key string `json:"key"`

	// Metadata
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Venue    string `json:"venue,omitempty"` // Journal, conference, or preprint server

	Published Date `json:"published"`

	// External identifiers (doi, arxiv, pmid, openalex, ...)
	Links []Link `json:"links,omitempty"`

	Topics        []string `json:"topics,omitempty"`
	CitationCount int      `json:"citation_count,omitempty"`

	Authors []PaperAuthor `json:"authors"`
}

// Date is a publication date with optional month and day.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// Link is an external identifier: a namespace plus a reference within it.
type Link struct {
	Type string `json:"type"`
	Ref  string `json:"ref"`
}

// PaperAuthor is an author as they appear on one paper, with the
// affiliations claimed there.
type PaperAuthor struct {
	Name         string        `json:"name"`
	Aliases      []string      `json:"aliases,omitempty"`
	Links        []Link        `json:"links,omitempty"`
	Affiliations []Institution `json:"affiliations,omitempty"`
}

// Institution is an organization an author is affiliated with.
type Institution struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"` // academia, industry, unknown
	Aliases  []string `json:"aliases,omitempty"`
}

// Scored pairs a paper with an externally computed relevance score for
// ranking. The score means nothing to the merge engine.
type Scored struct {
	Paper     Paper   `json:"paper"`
	Relevance float64 `json:"relevance"`
}

// Score implements rank.Scorer.
func (s *Scored) Score() float64 { return s.Relevance }
