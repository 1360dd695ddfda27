// Package rank maintains the N highest-scoring entities seen so far.
package rank

import "sort"

// Scorer exposes the externally computed relevance score the ranker
// orders by. The score is opaque to everything else in this module.
type Scorer interface {
	Score() float64
}

// entry pairs a value with the score captured when it entered the heap.
type entry[T Scorer] struct {
	score float64
	value T
}

// Top retains the n largest-scoring values added to it, using a min-heap
// keyed on the score captured at insertion time. If a held value's score
// changes out-of-band, the ranker's order is stale until Resort is
// called; that window is an accepted inconsistency, not a bug.
//
// Top is not safe for concurrent use.
type Top[T Scorer] struct {
	n        int
	dropZero bool
	heap     []entry[T]
}

// New returns a ranker holding at most n values. With dropZero set,
// values scoring exactly zero are ignored on Add and evicted by Resort.
func New[T Scorer](n int, dropZero bool) *Top[T] {
	return &Top[T]{n: n, dropZero: dropZero}
}

// Add offers a value to the ranker and reports whether it was retained.
// Once full, a new value only displaces the current minimum if it scores
// strictly higher.
func (t *Top[T]) Add(v T) bool {
	score := v.Score()
	if t.dropZero && score == 0 {
		return false
	}
	if t.n <= 0 {
		return false
	}

	if len(t.heap) < t.n {
		t.heap = append(t.heap, entry[T]{score: score, value: v})
		t.siftUp(len(t.heap) - 1)
		return true
	}
	if score <= t.heap[0].score {
		return false
	}
	t.heap[0] = entry[T]{score: score, value: v}
	t.siftDown(0)
	return true
}

// Len returns the number of values currently held.
func (t *Top[T]) Len() int { return len(t.heap) }

// Resort recaptures every held value's score and rebuilds the heap.
// Values whose score dropped to zero are evicted first when dropZero is
// set. Call this after mutating a held value's score out-of-band.
func (t *Top[T]) Resort() {
	kept := t.heap[:0]
	for _, e := range t.heap {
		score := e.value.Score()
		if t.dropZero && score == 0 {
			continue
		}
		kept = append(kept, entry[T]{score: score, value: e.value})
	}
	t.heap = kept
	for i := len(t.heap)/2 - 1; i >= 0; i-- {
		t.siftDown(i)
	}
}

// Items returns the held values in descending score order (the scores
// captured at insertion or last Resort). The stored order is not
// affected.
func (t *Top[T]) Items() []T {
	entries := make([]entry[T], len(t.heap))
	copy(entries, t.heap)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
	items := make([]T, len(entries))
	for i, e := range entries {
		items[i] = e.value
	}
	return items
}

func (t *Top[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if t.heap[parent].score <= t.heap[i].score {
			return
		}
		t.heap[parent], t.heap[i] = t.heap[i], t.heap[parent]
		i = parent
	}
}

func (t *Top[T]) siftDown(i int) {
	for {
		smallest := i
		if l := 2*i + 1; l < len(t.heap) && t.heap[l].score < t.heap[smallest].score {
			smallest = l
		}
		if r := 2*i + 2; r < len(t.heap) && t.heap[r].score < t.heap[smallest].score {
			smallest = r
		}
		if smallest == i {
			return
		}
		t.heap[i], t.heap[smallest] = t.heap[smallest], t.heap[i]
		i = smallest
	}
}
