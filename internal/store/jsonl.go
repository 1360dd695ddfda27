package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mila-iqia/bibmerge/internal/paper"
)

// maxJSONLLineCapacity is the maximum buffer size for reading JSONL
// lines (1MB per line).
const maxJSONLLineCapacity = 1024 * 1024

// ReadPapers reads all canonical papers from a JSONL file. A missing
// file yields an empty slice.
func ReadPapers(path string) ([]paper.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var papers []paper.Paper
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxJSONLLineCapacity)
	scanner.Buffer(buf, maxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p paper.Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return papers, nil
}

// WritePapers writes all canonical papers to a JSONL file atomically,
// via temp file + rename.
func WritePapers(path string, papers []paper.Paper) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	for i, p := range papers {
		data, err := json.Marshal(p)
		if err != nil {
			tmpFile.Close()
			return fmt.Errorf("encoding paper %d: %w", i, err)
		}
		if _, err := tmpFile.Write(append(data, '\n')); err != nil {
			tmpFile.Close()
			return fmt.Errorf("writing paper %d: %w", i, err)
		}
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
