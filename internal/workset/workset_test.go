package workset

import (
	"reflect"
	"testing"

	"github.com/mila-iqia/bibmerge/internal/merge"
)

// rec builds a minimal candidate record with the title annotated at the
// given source weight, the way paper conversion does it.
func rec(title string, weight float64) merge.Value {
	var tv merge.Value = merge.Scalar{V: title}
	if weight != 0 {
		tv = merge.Annotate(tv, weight)
	}
	return merge.Map{Entries: map[string]merge.Value{"title": tv}}
}

func title(v merge.Value) string {
	m, _ := merge.Unwrap(v)
	field, _ := merge.Unwrap(m.(merge.Map).Entries["title"])
	return field.(merge.Scalar).V.(string)
}

func TestWorkingSet_Fold(t *testing.T) {
	ws := New("10.1234/a")

	if ws.Current.Kind() != merge.KindAbsent {
		t.Fatalf("expected empty set to start absent, got %#v", ws.Current)
	}

	if err := ws.Fold(Candidate{Origin: "scraper", Weight: 0, Record: rec("Draft Title", 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ws.Fold(Candidate{Origin: "scholar", Weight: 5, Record: rec("Real Title", 5)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := title(ws.Current); got != "Real Title" {
		t.Errorf("expected higher-confidence title, got %q", got)
	}
}

func TestWorkingSet_FoldOrderIndependentForScalars(t *testing.T) {
	// The high-confidence title survives whichever order the candidates
	// arrive in.
	ws := New("k")
	ws.Fold(Candidate{Origin: "scholar", Weight: 5, Record: rec("Keeper", 5)})
	ws.Fold(Candidate{Origin: "scraper", Weight: 0, Record: rec("Loser", 0)})

	if got := title(ws.Current); got != "Keeper" {
		t.Errorf("expected annotated title to survive a later low-confidence fold, got %q", got)
	}
}

func TestWorkingSet_CollectsLosingCandidates(t *testing.T) {
	ws := New("k")
	ws.Fold(Candidate{Origin: "a", Weight: 5, Record: rec("Keeper", 5)})
	ws.Fold(Candidate{Origin: "b", Weight: 0, Record: rec("Loser", 0)})

	if len(ws.Collected) != 2 {
		t.Fatalf("expected both candidates collected, got %d", len(ws.Collected))
	}
	if ws.Collected[1].Origin != "b" {
		t.Errorf("expected fold order preserved, got %q second", ws.Collected[1].Origin)
	}
	// The losing candidate's raw record is untouched.
	if !merge.Equal(ws.Collected[1].Record, rec("Loser", 0)) {
		t.Errorf("expected raw record kept verbatim, got %#v", ws.Collected[1].Record)
	}
}

func TestWorkingSet_FoldErrorLeavesStateAlone(t *testing.T) {
	ws := New("k")
	ws.Fold(Candidate{Record: merge.Struct{Type: "paper", Fields: map[string]merge.Value{}}})

	before := ws.Current
	err := ws.Fold(Candidate{Record: merge.Struct{Type: "author", Fields: map[string]merge.Value{}}})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if !merge.Equal(ws.Current, before) {
		t.Error("expected Current unchanged after a failed fold")
	}
	if len(ws.Collected) != 1 {
		t.Errorf("expected failed candidate not collected, got %d", len(ws.Collected))
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Fold("k2", Candidate{Record: rec("Two", 0)})
	acc.Fold("k1", Candidate{Record: rec("One", 0)})
	acc.Fold("k2", Candidate{Weight: 5, Record: rec("Two Revised", 5)})

	if got := acc.Keys(); !reflect.DeepEqual(got, []string{"k2", "k1"}) {
		t.Errorf("expected first-seen key order, got %v", got)
	}
	if acc.Get("k3") != nil {
		t.Error("expected nil for unknown key")
	}
	if len(acc.Get("k2").Collected) != 2 {
		t.Errorf("expected 2 candidates for k2, got %d", len(acc.Get("k2").Collected))
	}
	if got := title(acc.Get("k2").Current); got != "Two Revised" {
		t.Errorf("expected revised title, got %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(`{"title":"A"}`))
	b := Fingerprint([]byte(`{"title":"B"}`))

	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected distinct inputs to fingerprint differently")
	}
	if a != Fingerprint([]byte(`{"title":"A"}`)) {
		t.Error("expected fingerprint to be deterministic")
	}
}
