package rank

import "testing"

// scored is a mutable test value; tests change Relevance out-of-band to
// exercise Resort.
type scored struct {
	ID        string
	Relevance float64
}

func (s *scored) Score() float64 { return s.Relevance }

func TestTop_Boundedness(t *testing.T) {
	top := New[*scored](3, false)
	for i, rel := range []float64{5, 1, 9, 3, 7, 2} {
		top.Add(&scored{ID: string(rune('a' + i)), Relevance: rel})
	}

	if top.Len() != 3 {
		t.Fatalf("expected 3 held values, got %d", top.Len())
	}
	items := top.Items()
	want := []float64{9, 7, 5}
	for i, it := range items {
		if it.Relevance != want[i] {
			t.Errorf("item %d: expected score %v, got %v", i, want[i], it.Relevance)
		}
	}
}

func TestTop_AddReportsRetention(t *testing.T) {
	top := New[*scored](2, false)
	if !top.Add(&scored{Relevance: 1}) {
		t.Error("expected add below capacity to retain")
	}
	if !top.Add(&scored{Relevance: 2}) {
		t.Error("expected add below capacity to retain")
	}
	if top.Add(&scored{Relevance: 0.5}) {
		t.Error("expected lower score not to displace")
	}
	// Equal to the minimum does not displace either.
	if top.Add(&scored{Relevance: 1}) {
		t.Error("expected equal score not to displace")
	}
	if !top.Add(&scored{Relevance: 3}) {
		t.Error("expected higher score to displace the minimum")
	}

	items := top.Items()
	if items[0].Relevance != 3 || items[1].Relevance != 2 {
		t.Errorf("expected [3 2], got [%v %v]", items[0].Relevance, items[1].Relevance)
	}
}

func TestTop_DropZero(t *testing.T) {
	top := New[*scored](5, true)
	if top.Add(&scored{Relevance: 0}) {
		t.Error("expected zero-scoring add to be a no-op")
	}
	if top.Len() != 0 {
		t.Errorf("expected nothing held, got %d", top.Len())
	}

	keep := New[*scored](5, false)
	if !keep.Add(&scored{Relevance: 0}) {
		t.Error("expected zero kept without dropZero")
	}
}

func TestTop_ResortAfterMutation(t *testing.T) {
	a := &scored{ID: "a", Relevance: 10}
	b := &scored{ID: "b", Relevance: 5}
	c := &scored{ID: "c", Relevance: 1}

	top := New[*scored](3, true)
	top.Add(a)
	top.Add(b)
	top.Add(c)

	// Out-of-band mutations: order is stale until Resort.
	b.Relevance = 20
	c.Relevance = 0

	items := top.Items()
	if items[0].ID != "a" {
		t.Errorf("expected stale order before Resort, got %q first", items[0].ID)
	}

	top.Resort()

	items = top.Items()
	if len(items) != 2 {
		t.Fatalf("expected zero-scoring value evicted, got %d items", len(items))
	}
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Errorf("expected [b a] after Resort, got [%s %s]", items[0].ID, items[1].ID)
	}
}

func TestTop_ZeroCapacity(t *testing.T) {
	top := New[*scored](0, false)
	if top.Add(&scored{Relevance: 1}) {
		t.Error("expected zero-capacity ranker to retain nothing")
	}
	if len(top.Items()) != 0 {
		t.Error("expected no items")
	}
}

func TestTop_EmptyIteration(t *testing.T) {
	top := New[*scored](3, true)
	if items := top.Items(); len(items) != 0 {
		t.Errorf("expected empty items, got %d", len(items))
	}
	top.Resort() // must not panic on empty
}
