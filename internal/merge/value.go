// Package merge implements the confidence-weighted record merge engine.
//
// Candidate records produced by unreliable sources are modeled as a closed
// set of shapes (Value) and combined two at a time by Merge. Every value
// may carry a numeric trust weight; conflicts between scalars are decided
// by weight, nested records are merged field by field, and lists of
// sub-records are matched up with the align package before merging
// element-wise.
package merge

import "github.com/mila-iqia/bibmerge/internal/align"

// Kind identifies one of the shapes the engine understands.
type Kind int

const (
	KindAbsent Kind = iota
	KindScalar
	KindAnnotated
	KindMap
	KindStruct
	KindPlainList
	KindKeyedList
)

// Value is the closed union of shapes Merge dispatches over. The only
// implementations are the types in this file.
type Value interface {
	Kind() Kind
}

// Absent marks a field with no value at all. Presence always beats
// absence during a merge, regardless of weights.
type Absent struct{}

func (Absent) Kind() Kind { return KindAbsent }

// Scalar holds a leaf value (string, int, float, bool).
type Scalar struct {
	V any
}

func (Scalar) Kind() Kind { return KindScalar }

// Annotated attaches a trust weight to an inner value. Code that does not
// care about confidence should access values through Unwrap; only Merge
// inspects the weight.
type Annotated struct {
	Inner  Value
	Weight float64
}

func (Annotated) Kind() Kind { return KindAnnotated }

// Map is a string-keyed collection of values.
type Map struct {
	Entries map[string]Value
}

func (Map) Kind() Kind { return KindMap }

// Struct is a typed record: a field map plus a type tag. Two Structs are
// mergeable only when their Type tags agree.
type Struct struct {
	Type   string
	Fields map[string]Value
}

func (Struct) Kind() Kind { return KindStruct }

// PlainList is an ordered list whose elements have no identity key
// (topics, free-form tags). Merging unions the two lists with
// order-preserving dedup.
type PlainList struct {
	Elems []Value
}

func (PlainList) Kind() Kind { return KindPlainList }

// KeyedList is an ordered list of sub-records with an identity notion
// expressed as a similarity function (co-authors matched by name,
// affiliations by institution name). Merging aligns the two lists and
// merges matched pairs; see Merge for the retention policy.
type KeyedList struct {
	Elems      []Value
	Similarity func(a, b Value) float64
	Threshold  float64
}

func (KeyedList) Kind() Kind { return KindKeyedList }

// Annotate wraps v with a trust weight. Annotating an already-annotated
// value collapses to a single layer carrying the max of the two weights,
// so repeated folds propagate the strongest confidence upward instead of
// stacking wrappers.
func Annotate(v Value, weight float64) Annotated {
	if a, ok := v.(Annotated); ok {
		if a.Weight > weight {
			weight = a.Weight
		}
		return Annotated{Inner: a.Inner, Weight: weight}
	}
	return Annotated{Inner: v, Weight: weight}
}

// Unwrap strips an annotation layer, returning the inner value and its
// weight. Unannotated values come back unchanged with weight 0.
func Unwrap(v Value) (Value, float64) {
	if a, ok := v.(Annotated); ok {
		return a.Inner, a.Weight
	}
	return v, 0
}

// Equal reports deep equality of two values. Annotation weights are part
// of a value's identity; similarity functions on keyed lists are not.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Absent:
		return true
	case Scalar:
		return av.V == b.(Scalar).V
	case Annotated:
		bv := b.(Annotated)
		return av.Weight == bv.Weight && Equal(av.Inner, bv.Inner)
	case Map:
		return mapsEqual(av.Entries, b.(Map).Entries)
	case Struct:
		bv := b.(Struct)
		return av.Type == bv.Type && mapsEqual(av.Fields, bv.Fields)
	case PlainList:
		return listsEqual(av.Elems, b.(PlainList).Elems)
	case KeyedList:
		return listsEqual(av.Elems, b.(KeyedList).Elems)
	}
	return false
}

func mapsEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

func listsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// keyedSimilarity returns the list's similarity function and threshold,
// falling back to the other list and then to defaults.
func keyedSimilarity(main, other KeyedList) (func(a, b Value) float64, float64) {
	sim := main.Similarity
	if sim == nil {
		sim = other.Similarity
	}
	threshold := main.Threshold
	if threshold <= 0 {
		threshold = other.Threshold
	}
	if threshold <= 0 {
		threshold = align.DefaultThreshold
	}
	return sim, threshold
}
