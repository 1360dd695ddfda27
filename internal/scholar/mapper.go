package scholar

import (
	"strconv"
	"strings"

	"github.com/mila-iqia/bibmerge/internal/paper"
	"github.com/mila-iqia/bibmerge/internal/source"
)

// SourceWeight is the trust weight of API-backed metadata, above scraped
// and PDF-extracted candidates.
const SourceWeight = 5.0

// PaperResponse mirrors the API's paper object for the fields we
// request.
type PaperResponse struct {
	PaperID         string           `json:"paperId"`
	ExternalIDs     map[string]any   `json:"externalIds"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Venue           string           `json:"venue"`
	Year            int              `json:"year"`
	PublicationDate string           `json:"publicationDate"` // YYYY-MM-DD
	CitationCount   int              `json:"citationCount"`
	FieldsOfStudy   []string         `json:"fieldsOfStudy"`
	Authors         []AuthorResponse `json:"authors"`
}

// AuthorResponse mirrors the API's author object.
type AuthorResponse struct {
	AuthorID     string   `json:"authorId"`
	Name         string   `json:"name"`
	Affiliations []string `json:"affiliations"`
}

// externalIDLinkTypes maps the API's external id names onto our link
// namespaces. The order is fixed so identical responses always map to
// the same Links slice, and therefore the same fingerprint.
var externalIDLinkTypes = []struct {
	apiName  string
	linkType string
}{
	{"DOI", "doi"},
	{"ArXiv", "arxiv"},
	{"PubMed", "pmid"},
	{"CorpusId", "corpusid"},
	{"DBLP", "dblp"},
	{"MAG", "mag"},
}

// MapPaper converts an API response into a domain paper. The entity key
// is the DOI when present, otherwise the API's own paper id.
func MapPaper(pr *PaperResponse) paper.Paper {
	p := paper.Paper{
		Title:         pr.Title,
		Abstract:      pr.Abstract,
		Venue:         pr.Venue,
		Topics:        pr.FieldsOfStudy,
		CitationCount: pr.CitationCount,
		Published:     mapDate(pr.PublicationDate, pr.Year),
	}

	for _, e := range externalIDLinkTypes {
		if ref := externalID(pr.ExternalIDs, e.apiName); ref != "" {
			p.Links = append(p.Links, paper.Link{Type: e.linkType, Ref: ref})
		}
	}
	if pr.PaperID != "" {
		p.Links = append(p.Links, paper.Link{Type: "s2", Ref: pr.PaperID})
	}

	for _, a := range pr.Authors {
		pa := paper.PaperAuthor{Name: a.Name}
		if a.AuthorID != "" {
			pa.Links = []paper.Link{{Type: "s2author", Ref: a.AuthorID}}
		}
		for _, aff := range a.Affiliations {
			pa.Affiliations = append(pa.Affiliations, paper.Institution{Name: aff})
		}
		p.Authors = append(p.Authors, pa)
	}

	p.Key = entityKey(p, pr.PaperID)
	return p
}

// Candidate wraps a mapped paper as a fold-ready candidate with this
// source's trust weight.
func Candidate(pr *PaperResponse) source.Candidate {
	p := MapPaper(pr)
	return source.Candidate{
		Key:    p.Key,
		Origin: "scholar:" + pr.PaperID,
		Weight: SourceWeight,
		Paper:  p,
	}
}

func entityKey(p paper.Paper, fallback string) string {
	for _, l := range p.Links {
		if l.Type == "doi" {
			return l.Ref
		}
	}
	return fallback
}

// externalID reads one entry of the externalIds object, which mixes
// string and numeric values.
func externalID(ids map[string]any, name string) string {
	switch v := ids[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// mapDate parses a YYYY-MM-DD publication date, falling back to the
// bare year.
func mapDate(pubDate string, year int) paper.Date {
	parts := strings.SplitN(pubDate, "-", 3)
	if len(parts) == 3 {
		y, errY := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		d, errD := strconv.Atoi(parts[2])
		if errY == nil && errM == nil && errD == nil {
			return paper.Date{Year: y, Month: m, Day: d}
		}
	}
	return paper.Date{Year: year}
}
