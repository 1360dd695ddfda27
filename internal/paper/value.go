package paper

import (
	"fmt"

	"github.com/mila-iqia/bibmerge/internal/align"
	"github.com/mila-iqia/bibmerge/internal/merge"
)

// Record type tags used in the merge engine representation.
const (
	TypePaper       = "paper"
	TypeDate        = "date"
	TypeLink        = "link"
	TypeAuthor      = "author"
	TypeInstitution = "institution"
)

// Value converts a paper into the merge engine's representation, with
// the source's trust weight annotated on every scalar field. Zero fields
// become Absent so that any present counterpart wins them; author and
// affiliation lists become keyed lists matched by normalized-name
// similarity; topics and links become plain lists deduplicated by
// equality, so their contents are never annotated (annotation weights
// count toward equality and would defeat the dedup).
//
// Containers carry no weight of their own: when two versions of a list
// or sub-record meet, the side already in the working set stays "main"
// and the incoming side may only enrich it. Scalar conflicts inside are
// still decided by the annotated weights.
func (p Paper) Value(weight float64) merge.Value {
	authors := make([]merge.Value, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = a.value(weight)
	}

	return merge.Struct{Type: TypePaper, Fields: map[string]merge.Value{
		"title":          scalarString(p.Title, weight),
		"abstract":       scalarString(p.Abstract, weight),
		"venue":          scalarString(p.Venue, weight),
		"published":      p.Published.value(weight),
		"links":          linksValue(p.Links),
		"topics":         stringsValue(p.Topics),
		"citation_count": scalarInt(p.CitationCount, weight),
		"authors": merge.KeyedList{
			Elems:      authors,
			Similarity: AuthorSimilarity,
			Threshold:  align.DefaultThreshold,
		},
	}}
}

func (a PaperAuthor) value(weight float64) merge.Value {
	affiliations := make([]merge.Value, len(a.Affiliations))
	for i, inst := range a.Affiliations {
		affiliations[i] = inst.value(weight)
	}
	return merge.Struct{Type: TypeAuthor, Fields: map[string]merge.Value{
		"name":    scalarString(a.Name, weight),
		"aliases": stringsValue(a.Aliases),
		"links":   linksValue(a.Links),
		"affiliations": merge.KeyedList{
			Elems:      affiliations,
			Similarity: InstitutionSimilarity,
			Threshold:  align.DefaultThreshold,
		},
	}}
}

func (i Institution) value(weight float64) merge.Value {
	return merge.Struct{Type: TypeInstitution, Fields: map[string]merge.Value{
		"name":     scalarString(i.Name, weight),
		"category": scalarString(i.Category, weight),
		"aliases":  stringsValue(i.Aliases),
	}}
}

func (d Date) value(weight float64) merge.Value {
	if d.Year == 0 && d.Month == 0 && d.Day == 0 {
		return merge.Absent{}
	}
	return merge.Struct{Type: TypeDate, Fields: map[string]merge.Value{
		"year":  scalarInt(d.Year, weight),
		"month": scalarInt(d.Month, weight),
		"day":   scalarInt(d.Day, weight),
	}}
}

// linkValue never annotates: links live in plain lists, where annotation
// weights would break equality-based dedup.
func linkValue(l Link) merge.Value {
	return merge.Struct{Type: TypeLink, Fields: map[string]merge.Value{
		"type": scalarString(l.Type, 0),
		"ref":  scalarString(l.Ref, 0),
	}}
}

func linksValue(links []Link) merge.Value {
	elems := make([]merge.Value, len(links))
	for i, l := range links {
		elems[i] = linkValue(l)
	}
	return merge.PlainList{Elems: elems}
}

func stringsValue(ss []string) merge.Value {
	elems := make([]merge.Value, len(ss))
	for i, s := range ss {
		elems[i] = merge.Scalar{V: s}
	}
	return merge.PlainList{Elems: elems}
}

func scalarString(s string, weight float64) merge.Value {
	if s == "" {
		return merge.Absent{}
	}
	return weigh(merge.Scalar{V: s}, weight)
}

func scalarInt(n int, weight float64) merge.Value {
	if n == 0 {
		return merge.Absent{}
	}
	return weigh(merge.Scalar{V: n}, weight)
}

// weigh annotates a scalar with a non-zero source weight. Weight zero is
// the ambient default, so annotating with it would only add noise.
func weigh(v merge.Value, weight float64) merge.Value {
	if weight == 0 {
		return v
	}
	return merge.Annotate(v, weight)
}

// AuthorSimilarity scores two author records by normalized display-name
// similarity. Malformed records (no name) score 0.
func AuthorSimilarity(a, b merge.Value) float64 {
	return align.Similarity(recordName(a), recordName(b))
}

// InstitutionSimilarity scores two institution records by normalized
// name similarity.
func InstitutionSimilarity(a, b merge.Value) float64 {
	return align.Similarity(recordName(a), recordName(b))
}

// recordName extracts the "name" field of a record value, seeing through
// confidence annotations. Returns "" for anything malformed.
func recordName(v merge.Value) string {
	inner, _ := merge.Unwrap(v)
	st, ok := inner.(merge.Struct)
	if !ok {
		return ""
	}
	field, _ := merge.Unwrap(st.Fields["name"])
	sc, ok := field.(merge.Scalar)
	if !ok {
		return ""
	}
	name, _ := sc.V.(string)
	return name
}

// FromValue converts a merged value back into a Paper. Confidence
// annotations are transparent: they are stripped wherever encountered.
func FromValue(key string, v merge.Value) (Paper, error) {
	fields, err := recordFields(v, TypePaper)
	if err != nil {
		return Paper{}, err
	}

	p := Paper{Key: key}
	p.Title, err = stringField(fields, "title")
	if err != nil {
		return Paper{}, err
	}
	if p.Abstract, err = stringField(fields, "abstract"); err != nil {
		return Paper{}, err
	}
	if p.Venue, err = stringField(fields, "venue"); err != nil {
		return Paper{}, err
	}
	if p.CitationCount, err = intField(fields, "citation_count"); err != nil {
		return Paper{}, err
	}
	if p.Published, err = dateFromValue(fields["published"]); err != nil {
		return Paper{}, err
	}
	if p.Links, err = linksFromValue(fields["links"]); err != nil {
		return Paper{}, err
	}
	if p.Topics, err = stringsFromValue(fields["topics"]); err != nil {
		return Paper{}, err
	}

	for _, av := range listElems(fields["authors"]) {
		author, err := authorFromValue(av)
		if err != nil {
			return Paper{}, err
		}
		p.Authors = append(p.Authors, author)
	}
	return p, nil
}

func authorFromValue(v merge.Value) (PaperAuthor, error) {
	fields, err := recordFields(v, TypeAuthor)
	if err != nil {
		return PaperAuthor{}, err
	}

	var a PaperAuthor
	if a.Name, err = stringField(fields, "name"); err != nil {
		return PaperAuthor{}, err
	}
	if a.Aliases, err = stringsFromValue(fields["aliases"]); err != nil {
		return PaperAuthor{}, err
	}
	if a.Links, err = linksFromValue(fields["links"]); err != nil {
		return PaperAuthor{}, err
	}
	for _, iv := range listElems(fields["affiliations"]) {
		inst, err := institutionFromValue(iv)
		if err != nil {
			return PaperAuthor{}, err
		}
		a.Affiliations = append(a.Affiliations, inst)
	}
	return a, nil
}

func institutionFromValue(v merge.Value) (Institution, error) {
	fields, err := recordFields(v, TypeInstitution)
	if err != nil {
		return Institution{}, err
	}
	var inst Institution
	if inst.Name, err = stringField(fields, "name"); err != nil {
		return Institution{}, err
	}
	if inst.Category, err = stringField(fields, "category"); err != nil {
		return Institution{}, err
	}
	if inst.Aliases, err = stringsFromValue(fields["aliases"]); err != nil {
		return Institution{}, err
	}
	return inst, nil
}

func dateFromValue(v merge.Value) (Date, error) {
	inner, _ := merge.Unwrap(v)
	if inner == nil || inner.Kind() == merge.KindAbsent {
		return Date{}, nil
	}
	fields, err := recordFields(inner, TypeDate)
	if err != nil {
		return Date{}, err
	}
	var d Date
	if d.Year, err = intField(fields, "year"); err != nil {
		return Date{}, err
	}
	if d.Month, err = intField(fields, "month"); err != nil {
		return Date{}, err
	}
	if d.Day, err = intField(fields, "day"); err != nil {
		return Date{}, err
	}
	return d, nil
}

func linksFromValue(v merge.Value) ([]Link, error) {
	var links []Link
	for _, lv := range listElems(v) {
		fields, err := recordFields(lv, TypeLink)
		if err != nil {
			return nil, err
		}
		var l Link
		if l.Type, err = stringField(fields, "type"); err != nil {
			return nil, err
		}
		if l.Ref, err = stringField(fields, "ref"); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, nil
}

func stringsFromValue(v merge.Value) ([]string, error) {
	var out []string
	for _, ev := range listElems(v) {
		inner, _ := merge.Unwrap(ev)
		sc, ok := inner.(merge.Scalar)
		if !ok {
			return nil, fmt.Errorf("expected string list element, got %T", inner)
		}
		s, ok := sc.V.(string)
		if !ok {
			return nil, fmt.Errorf("expected string list element, got %T", sc.V)
		}
		out = append(out, s)
	}
	return out, nil
}

// listElems returns the elements of a plain or keyed list value, or nil
// for an absent one.
func listElems(v merge.Value) []merge.Value {
	inner, _ := merge.Unwrap(v)
	switch lv := inner.(type) {
	case merge.PlainList:
		return lv.Elems
	case merge.KeyedList:
		return lv.Elems
	default:
		return nil
	}
}

func recordFields(v merge.Value, wantType string) (map[string]merge.Value, error) {
	inner, _ := merge.Unwrap(v)
	st, ok := inner.(merge.Struct)
	if !ok {
		return nil, fmt.Errorf("expected %s record, got %T", wantType, inner)
	}
	if st.Type != wantType {
		return nil, fmt.Errorf("expected %s record, got %s", wantType, st.Type)
	}
	return st.Fields, nil
}

func stringField(fields map[string]merge.Value, name string) (string, error) {
	inner, _ := merge.Unwrap(fields[name])
	if inner == nil || inner.Kind() == merge.KindAbsent {
		return "", nil
	}
	sc, ok := inner.(merge.Scalar)
	if !ok {
		return "", fmt.Errorf("field %s: expected scalar, got %T", name, inner)
	}
	s, ok := sc.V.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", name, sc.V)
	}
	return s, nil
}

func intField(fields map[string]merge.Value, name string) (int, error) {
	inner, _ := merge.Unwrap(fields[name])
	if inner == nil || inner.Kind() == merge.KindAbsent {
		return 0, nil
	}
	sc, ok := inner.(merge.Scalar)
	if !ok {
		return 0, fmt.Errorf("field %s: expected scalar, got %T", name, inner)
	}
	switch n := sc.V.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %s: expected int, got %T", name, sc.V)
	}
}
