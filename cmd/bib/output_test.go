package main

import (
	"testing"

	"github.com/mila-iqia/bibmerge/internal/paper"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this one is definitely too long", 10, "this on..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	authors := []paper.PaperAuthor{
		{Name: "Alice Johnson"},
		{Name: "Bob Taylor"},
		{Name: "Carol Singh"},
	}

	if got := formatAuthorsShort(nil, 5); got != "" {
		t.Errorf("expected empty for no authors, got %q", got)
	}
	if got := formatAuthorsShort(authors, 5); got != "Alice Johnson, Bob Taylor, Carol Singh" {
		t.Errorf("unexpected full list: %q", got)
	}
	if got := formatAuthorsShort(authors, 2); got != "Alice Johnson, Bob Taylor, et al." {
		t.Errorf("unexpected truncated list: %q", got)
	}
}
