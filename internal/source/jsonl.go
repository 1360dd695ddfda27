package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// maxCandidateLineCapacity bounds JSONL candidate lines (1MB per line).
const maxCandidateLineCapacity = 1024 * 1024

// FileSource reads candidate records from a JSONL batch file, one
// candidate object per line.
type FileSource struct {
	Path string
}

// Candidates returns the file's candidates for one entity key.
func (s *FileSource) Candidates(ctx context.Context, key string) ([]Candidate, error) {
	batch, err := ReadBatch(s.Path)
	if err != nil {
		return nil, err
	}
	var out []Candidate
	for _, c := range batch {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReadBatch reads every candidate in a JSONL file, in file order. A
// missing file yields an empty batch.
func ReadBatch(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening candidates file: %w", err)
	}
	defer f.Close()

	var batch []Candidate
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxCandidateLineCapacity)
	scanner.Buffer(buf, maxCandidateLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c Candidate
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("parsing candidate line %d: %w", lineNum, err)
		}
		batch = append(batch, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}
	return batch, nil
}

// AppendCandidate appends one candidate to a JSONL batch file.
func AppendCandidate(path string, c Candidate) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening candidates file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding candidate: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing candidate: %w", err)
	}
	return nil
}
