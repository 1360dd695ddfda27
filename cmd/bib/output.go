package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mila-iqia/bibmerge/internal/paper"
)

const (
	// ListTitleMaxLen truncates titles in list output.
	ListTitleMaxLen = 60
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit
// code.
func outputError(code int, format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or
// JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if
// truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorsShort formats authors with "et al." past maxCount.
func formatAuthorsShort(authors []paper.PaperAuthor, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}
	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// printPaperHuman prints one canonical paper in human-readable form.
func printPaperHuman(p paper.Paper) {
	fmt.Printf("%s\n", p.Key)
	fmt.Printf("  Title: %s\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Printf("  Authors: %s\n", formatAuthorsShort(p.Authors, 5))
	}
	if p.Venue != "" {
		fmt.Printf("  Venue: %s\n", p.Venue)
	}
	if p.Published.Year != 0 {
		fmt.Printf("  Year: %d\n", p.Published.Year)
	}
	if p.CitationCount != 0 {
		fmt.Printf("  Citations: %d\n", p.CitationCount)
	}
}
