package merge

import (
	"fmt"

	"github.com/mila-iqia/bibmerge/internal/align"
)

const (
	// DiscardWeight marks a value as a placeholder: during a merge it
	// loses to any present counterpart, regardless of the counterpart's
	// own weight.
	DiscardWeight = -10

	// ForceWeight is the conventional weight callers use to make a value
	// win unconditionally against ordinary candidates.
	ForceWeight = 100
)

// MismatchError reports an attempt to merge two structurally incompatible
// records. This is a programming error on the caller's side, never a data
// condition, so it is surfaced instead of being coerced away.
type MismatchError struct {
	A, B string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cannot merge record %q with %q", e.A, e.B)
}

// Merge combines two versions of a value, arbitrating conflicts by trust
// weight. wa and wb are the ambient weights of the two sides (typically
// the fold weights of the candidate records they came from); values
// annotated via Annotate replace the ambient weight with their own.
//
// Rule order:
//  1. Presence beats absence, irrespective of weight.
//  2. A side at or below DiscardWeight loses to the other side.
//  3. Maps and same-typed records merge recursively over the union of
//     their keys; the heavier side's entries take precedence.
//  4. Plain lists union with order-preserving dedup, heavier side first.
//  5. Keyed lists are aligned by similarity; matched elements merge,
//     unmatched heavier-side elements are kept, and unmatched
//     lighter-side elements are dropped. The higher-confidence list
//     defines the final candidate set of sub-entities; the lower may
//     enrich existing entries but never introduce new ones.
//  6. Everything else falls back to the scalar rule: heavier side wins,
//     ties go to b.
//
// The only error condition is merging two differently-typed records, or a
// record against a non-record.
func Merge(a, b Value, wa, wb float64) (Value, error) {
	if a == nil {
		a = Absent{}
	}
	if b == nil {
		b = Absent{}
	}

	// Rule 1: presence beats absence.
	if a.Kind() == KindAbsent {
		return b, nil
	}
	if b.Kind() == KindAbsent {
		return a, nil
	}

	// Unwrap annotations. An annotated value carries its own trust
	// weight, which replaces the ambient weight of its record — this is
	// how a field inside a high-trust record can still be marked as a
	// discard placeholder. The result is re-wrapped below so confidence
	// propagates through repeated folds.
	wrap := false
	if ann, ok := a.(Annotated); ok {
		wrap = true
		a = ann.Inner
		wa = ann.Weight
	}
	if ann, ok := b.(Annotated); ok {
		wrap = true
		b = ann.Inner
		wb = ann.Weight
	}

	merged, err := mergeUnwrapped(a, b, wa, wb)
	if err != nil {
		return nil, err
	}
	if wrap {
		outer := wa
		if wb > outer {
			outer = wb
		}
		return Annotate(merged, outer), nil
	}
	return merged, nil
}

// mergeUnwrapped dispatches on shape after absence and annotation
// handling. The discard sentinel is checked before any shape-specific
// rule.
func mergeUnwrapped(a, b Value, wa, wb float64) (Value, error) {
	// Rule 2: discard sentinel.
	if wa <= DiscardWeight {
		return b, nil
	}
	if wb <= DiscardWeight {
		return a, nil
	}

	switch av := a.(type) {
	case Map:
		if bv, ok := b.(Map); ok {
			return mergeMaps(av, bv, wa, wb)
		}
	case Struct:
		bv, ok := b.(Struct)
		if !ok {
			return nil, &MismatchError{A: av.Type, B: shapeName(b)}
		}
		if av.Type != bv.Type {
			return nil, &MismatchError{A: av.Type, B: bv.Type}
		}
		fields, err := mergeMaps(Map{Entries: av.Fields}, Map{Entries: bv.Fields}, wa, wb)
		if err != nil {
			return nil, err
		}
		return Struct{Type: av.Type, Fields: fields.(Map).Entries}, nil
	case PlainList:
		if bv, ok := b.(PlainList); ok {
			return mergePlainLists(av, bv, wa, wb), nil
		}
	case KeyedList:
		if bv, ok := b.(KeyedList); ok {
			return mergeKeyedLists(av, bv, wa, wb)
		}
	}

	if _, ok := b.(Struct); ok {
		return nil, &MismatchError{A: shapeName(a), B: b.(Struct).Type}
	}

	// Scalar rule, also the fallback for mismatched non-record shapes:
	// a wins only with strictly greater weight.
	if wa > wb {
		return a, nil
	}
	return b, nil
}

// mergeMaps merges two maps over the union of their key sets. The
// heavier map is "main": its entries win conflicts and its keys are
// merged against the other side's where both are present.
func mergeMaps(a, b Map, wa, wb float64) (Value, error) {
	main, other, wMain, wOther := orient(Value(a), Value(b), wa, wb)
	mainEntries := main.(Map).Entries
	otherEntries := other.(Map).Entries

	merged := make(map[string]Value, len(mainEntries)+len(otherEntries))
	for k, v := range otherEntries {
		merged[k] = v
	}
	for k, mv := range mainEntries {
		ov, both := otherEntries[k]
		if !both {
			merged[k] = mv
			continue
		}
		v, err := Merge(mv, ov, wMain, wOther)
		if err != nil {
			return nil, err
		}
		merged[k] = v
	}
	return Map{Entries: merged}, nil
}

// mergePlainLists unions two identity-free lists: the heavier list in
// full, then every element of the lighter list not already present.
func mergePlainLists(a, b PlainList, wa, wb float64) Value {
	if len(a.Elems) == 0 {
		return b
	}
	if len(b.Elems) == 0 {
		return a
	}

	main, other, _, _ := orient(Value(a), Value(b), wa, wb)
	result := make([]Value, 0, len(main.(PlainList).Elems)+len(other.(PlainList).Elems))
	result = append(result, main.(PlainList).Elems...)
	for _, e := range other.(PlainList).Elems {
		if !containsValue(result, e) {
			result = append(result, e)
		}
	}
	return PlainList{Elems: result}
}

// mergeKeyedLists aligns the lighter list against the heavier one and
// merges matched pairs. Lighter-side elements that match nothing are
// dropped: a low-trust source may enrich known sub-entities but must not
// introduce new ones.
func mergeKeyedLists(a, b KeyedList, wa, wb float64) (Value, error) {
	if len(a.Elems) == 0 {
		return b, nil
	}
	if len(b.Elems) == 0 {
		return a, nil
	}

	main, other, wMain, wOther := orient(Value(a), Value(b), wa, wb)
	mainList := main.(KeyedList)
	otherList := other.(KeyedList)
	sim, threshold := keyedSimilarity(mainList, otherList)
	if sim == nil {
		sim = func(x, y Value) float64 {
			if Equal(x, y) {
				return 1
			}
			return 0
		}
	}

	pairs := align.Pairs(mainList.Elems, otherList.Elems, sim, threshold)
	merged := make([]Value, 0, len(pairs))
	for _, p := range pairs {
		if p.Match == nil {
			merged = append(merged, p.Main)
			continue
		}
		v, err := Merge(p.Main, *p.Match, wMain, wOther)
		if err != nil {
			return nil, err
		}
		merged = append(merged, v)
	}
	return KeyedList{Elems: merged, Similarity: mainList.Similarity, Threshold: mainList.Threshold}, nil
}

// orient returns (main, other) ordered by weight: a leads when wa >= wb.
func orient(a, b Value, wa, wb float64) (main, other Value, wMain, wOther float64) {
	if wa >= wb {
		return a, b, wa, wb
	}
	return b, a, wb, wa
}

func containsValue(list []Value, v Value) bool {
	for _, e := range list {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func shapeName(v Value) string {
	switch v.Kind() {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindAnnotated:
		return "annotated"
	case KindMap:
		return "map"
	case KindStruct:
		return "record"
	case KindPlainList:
		return "list"
	case KindKeyedList:
		return "keyed list"
	}
	return "unknown"
}
