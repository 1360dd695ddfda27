// Package align pairs up elements of two collections of near-duplicate
// sub-records (authors, affiliations) by a pluggable similarity score.
package align

import "sort"

// DefaultThreshold is the minimum similarity for two elements to be
// considered the same sub-record.
const DefaultThreshold = 0.5

// Pair is one element of the main list together with its best match from
// the other list, or nil when nothing cleared the threshold.
type Pair[T any] struct {
	Main  T
	Match *T
}

// candidate is a scored (main, other) index pair.
type candidate struct {
	main, other int
	score       float64
}

// Pairs aligns other against main and returns one Pair per main element,
// in main order. Elements of other that match nothing are discarded; use
// PairsRemainder to recover them.
//
// Pairs with similarity below threshold are never matched. Remaining
// candidates are committed greedily in descending similarity order, so an
// exact match always wins over a near match even when both clear the
// threshold. This is what makes symmetric near-duplicates resolve
// deterministically: aligning ["James Smith", "James Smeth"] against the
// same two names in reverse order produces the exact cross pairing, not a
// positional one.
func Pairs[T any](main, other []T, sim func(T, T) float64, threshold float64) []Pair[T] {
	pairs, _ := PairsRemainder(main, other, sim, threshold)
	return pairs
}

// PairsRemainder is Pairs plus the unmatched elements of other, in their
// original order.
func PairsRemainder[T any](main, other []T, sim func(T, T) float64, threshold float64) ([]Pair[T], []T) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var candidates []candidate
	for i := range main {
		for j := range other {
			score := sim(main[i], other[j])
			if score >= threshold {
				candidates = append(candidates, candidate{main: i, other: j, score: score})
			}
		}
	}

	// Descending score; index order breaks exact ties so alignment is
	// deterministic for equal-scoring pairs.
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		if candidates[a].main != candidates[b].main {
			return candidates[a].main < candidates[b].main
		}
		return candidates[a].other < candidates[b].other
	})

	matchFor := make(map[int]int, len(main)) // main index -> other index
	takenOther := make(map[int]bool, len(other))
	for _, c := range candidates {
		if _, done := matchFor[c.main]; done {
			continue
		}
		if takenOther[c.other] {
			continue
		}
		matchFor[c.main] = c.other
		takenOther[c.other] = true
	}

	pairs := make([]Pair[T], len(main))
	for i := range main {
		pairs[i] = Pair[T]{Main: main[i]}
		if j, ok := matchFor[i]; ok {
			m := other[j]
			pairs[i].Match = &m
		}
	}

	var remainder []T
	for j := range other {
		if !takenOther[j] {
			remainder = append(remainder, other[j])
		}
	}
	return pairs, remainder
}
