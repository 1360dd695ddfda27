package paper

import (
	"reflect"
	"testing"

	"github.com/mila-iqia/bibmerge/internal/merge"
	"github.com/mila-iqia/bibmerge/internal/workset"
)

func TestValueRoundtrip(t *testing.T) {
	p := Paper{
		Key:       "10.1234/example",
		Title:     "A Study of Things",
		Abstract:  "We study things.",
		Venue:     "NeurIPS",
		Published: Date{Year: 2021, Month: 12, Day: 6},
		Links: []Link{
			{Type: "doi", Ref: "10.1234/example"},
			{Type: "arxiv", Ref: "2101.00001"},
		},
		Topics:        []string{"machine learning"},
		CitationCount: 42,
		Authors: []PaperAuthor{
			{
				Name:    "Alice Johnson",
				Aliases: []string{"A. Johnson"},
				Links:   []Link{{Type: "s2author", Ref: "123"}},
				Affiliations: []Institution{
					{Name: "Example University", Category: "academia"},
				},
			},
			{Name: "Bob Taylor"},
		},
	}

	// A non-zero weight exercises annotation transparency: the weights
	// ride along in the value but never leak into the decoded paper.
	got, err := FromValue(p.Key, p.Value(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestValue_ZeroFieldsAbsent(t *testing.T) {
	v := Paper{Title: "T"}.Value(0)
	fields := v.(merge.Struct).Fields

	for _, name := range []string{"abstract", "venue", "published", "citation_count"} {
		if fields[name].Kind() != merge.KindAbsent {
			t.Errorf("expected zero %s to convert to absent, got %#v", name, fields[name])
		}
	}
}

func TestFromValue_WrongType(t *testing.T) {
	if _, err := FromValue("k", merge.Struct{Type: TypeAuthor, Fields: map[string]merge.Value{}}); err == nil {
		t.Error("expected error for non-paper record")
	}
	if _, err := FromValue("k", merge.Scalar{V: "x"}); err == nil {
		t.Error("expected error for non-record value")
	}
}

func TestAuthorSimilarity(t *testing.T) {
	alice := PaperAuthor{Name: "Alice Johnson"}.value(0)
	aliceAccented := PaperAuthor{Name: "alicé jóhnson"}.value(3)
	bob := PaperAuthor{Name: "Bob Taylor"}.value(0)

	if got := AuthorSimilarity(alice, aliceAccented); got != 1 {
		t.Errorf("expected normalized names to score 1, got %v", got)
	}
	if got := AuthorSimilarity(alice, bob); got >= 0.5 {
		t.Errorf("expected distinct names below threshold, got %v", got)
	}
	// Malformed records score 0 rather than panicking.
	if got := AuthorSimilarity(alice, merge.Scalar{V: "not a record"}); got != 0 {
		t.Errorf("expected malformed record to score 0, got %v", got)
	}
}

func TestFold_EndToEnd(t *testing.T) {
	// A low-trust candidate arrives first, then a high-trust one whose
	// title is explicitly marked as a discard placeholder and which
	// claims an extra author. The merged paper keeps the first title and
	// refuses the new author: an established author list can be
	// enriched, never extended.
	r1 := Paper{Title: "T", Authors: []PaperAuthor{{Name: "Xavier Yu"}}}
	r2 := Paper{Title: "T2", Authors: []PaperAuthor{{Name: "Xavier Yu"}, {Name: "Yolanda Zhao"}}}

	v2 := r2.Value(5)
	v2.(merge.Struct).Fields["title"] = merge.Annotate(merge.Scalar{V: "T2"}, merge.DiscardWeight)

	ws := workset.New("k")
	if err := ws.Fold(workset.Candidate{Origin: "scraper", Record: r1.Value(0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ws.Fold(workset.Candidate{Origin: "scholar", Weight: 5, Record: v2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged, err := FromValue("k", ws.Current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Title != "T" {
		t.Errorf("expected discard-marked title to lose, got %q", merged.Title)
	}
	if len(merged.Authors) != 1 || merged.Authors[0].Name != "Xavier Yu" {
		t.Errorf("expected single established author, got %+v", merged.Authors)
	}
}

func TestFold_EnrichesMatchedAuthor(t *testing.T) {
	r1 := Paper{Title: "T", Authors: []PaperAuthor{{Name: "Alice Johnson"}}}
	r2 := Paper{
		Title: "T",
		Authors: []PaperAuthor{{
			Name:         "alice johnson",
			Affiliations: []Institution{{Name: "Example University"}},
		}},
	}

	ws := workset.New("k")
	ws.Fold(workset.Candidate{Record: r1.Value(0)})
	ws.Fold(workset.Candidate{Weight: 5, Record: r2.Value(5)})

	merged, err := FromValue("k", ws.Current)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged.Authors) != 1 {
		t.Fatalf("expected authors matched by name, got %+v", merged.Authors)
	}
	a := merged.Authors[0]
	if a.Name != "alice johnson" {
		t.Errorf("expected higher-confidence name spelling, got %q", a.Name)
	}
	if len(a.Affiliations) != 1 || a.Affiliations[0].Name != "Example University" {
		t.Errorf("expected affiliation enrichment, got %+v", a.Affiliations)
	}
}

func TestScored_Score(t *testing.T) {
	s := &Scored{Relevance: 3.5}
	if s.Score() != 3.5 {
		t.Errorf("expected 3.5, got %v", s.Score())
	}
}
