package align

import "testing"

func TestPairs_ExactMatchWinsOverNearMatch(t *testing.T) {
	// Both cross-pairings clear the threshold, but the exact matches
	// must win, independent of element order.
	main := []string{"james smith", "james smeth"}
	other := []string{"james smeth", "james smith"}

	pairs := Pairs(main, other, Similarity, 0.5)

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Match == nil || *pairs[0].Match != "james smith" {
		t.Errorf("expected james smith paired exactly, got %v", pairs[0].Match)
	}
	if pairs[1].Match == nil || *pairs[1].Match != "james smeth" {
		t.Errorf("expected james smeth paired exactly, got %v", pairs[1].Match)
	}
}

func TestPairs_BelowThresholdUnmatched(t *testing.T) {
	main := []string{"alice johnson"}
	other := []string{"zebulon quark"}

	pairs := Pairs(main, other, Similarity, 0.5)

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Match != nil {
		t.Errorf("expected no match below threshold, got %v", *pairs[0].Match)
	}
}

func TestPairs_EachElementMatchedOnce(t *testing.T) {
	// Two main elements close to the same other element: only one may
	// claim it.
	main := []string{"john smith", "jon smith"}
	other := []string{"john smith"}

	pairs := Pairs(main, other, Similarity, 0.5)

	matched := 0
	for _, p := range pairs {
		if p.Match != nil {
			matched++
		}
	}
	if matched != 1 {
		t.Errorf("expected exactly one match, got %d", matched)
	}
	if pairs[0].Match == nil {
		t.Error("expected the exact-scoring main element to claim the match")
	}
}

func TestPairs_EmptyInputs(t *testing.T) {
	if got := Pairs(nil, []string{"x"}, Similarity, 0.5); len(got) != 0 {
		t.Errorf("expected no pairs for empty main, got %d", len(got))
	}

	pairs := Pairs([]string{"x"}, nil, Similarity, 0.5)
	if len(pairs) != 1 || pairs[0].Match != nil {
		t.Errorf("expected one unmatched pair for empty other, got %#v", pairs)
	}
}

func TestPairs_ZeroThresholdUsesDefault(t *testing.T) {
	// "ab" vs "xy" scores 0, below the default threshold, so a zero
	// threshold must not degenerate into match-everything.
	pairs := Pairs([]string{"ab"}, []string{"xy"}, Similarity, 0)
	if pairs[0].Match != nil {
		t.Errorf("expected default threshold applied, got match %v", *pairs[0].Match)
	}
}

func TestPairsRemainder(t *testing.T) {
	main := []string{"alice johnson"}
	other := []string{"alice johnson", "bob taylor", "carol singh"}

	pairs, rest := PairsRemainder(main, other, Similarity, 0.5)

	if pairs[0].Match == nil || *pairs[0].Match != "alice johnson" {
		t.Fatalf("expected alice matched, got %#v", pairs[0])
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 unmatched, got %d", len(rest))
	}
	if rest[0] != "bob taylor" || rest[1] != "carol singh" {
		t.Errorf("expected remainder in original order, got %v", rest)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jésus-María  Núñez", "jesus maria nunez"},
		{"O'Brien, Patrick", "o brien patrick"},
		{"  J.  K.  Rowling ", "j k rowling"},
		{"van der Berg", "van der berg"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("James Smith", "james smith"); got != 1 {
		t.Errorf("expected case-insensitive exact score 1, got %v", got)
	}
	if got := Similarity("José García", "Jose Garcia"); got != 1 {
		t.Errorf("expected diacritic-folded exact score 1, got %v", got)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Errorf("expected empty input to score 0, got %v", got)
	}
	if got := Similarity("...", "anything"); got != 0 {
		t.Errorf("expected unnormalizable input to score 0, got %v", got)
	}

	near := Similarity("james smith", "james smeth")
	if near <= 0.5 || near >= 1 {
		t.Errorf("expected near-duplicate score in (0.5, 1), got %v", near)
	}
	far := Similarity("james smith", "zebulon quark")
	if far >= near {
		t.Errorf("expected unrelated names to score below near-duplicates: %v >= %v", far, near)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"smith", "smeth", 1},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
