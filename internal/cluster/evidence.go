package cluster

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxEvidenceLineCapacity bounds JSONL evidence lines (1MB per line).
const maxEvidenceLineCapacity = 1024 * 1024

// Evidence is one unit of external proof that a set of identifiers
// refers to the same entity.
type Evidence struct {
	IDs   []string `json:"ids"`
	Label string   `json:"label,omitempty"`
	Class string   `json:"class,omitempty"`
}

// ReadEvidence reads equivalence evidence from a JSONL file. A missing
// file yields an empty batch, not an error.
func ReadEvidence(path string) ([]Evidence, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening evidence file: %w", err)
	}
	defer f.Close()

	var batch []Evidence
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxEvidenceLineCapacity)
	scanner.Buffer(buf, maxEvidenceLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Evidence
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("parsing evidence line %d: %w", lineNum, err)
		}
		batch = append(batch, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading evidence file: %w", err)
	}
	return batch, nil
}

// Apply feeds a batch of evidence through the registry in order.
func Apply(r *Registry, batch []Evidence) {
	for _, ev := range batch {
		r.UnionAll(ev.IDs, ev.Class, ev.Label)
	}
}
