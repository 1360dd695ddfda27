package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/merge"
	"github.com/mila-iqia/bibmerge/internal/paper"
	"github.com/mila-iqia/bibmerge/internal/source"
	"github.com/mila-iqia/bibmerge/internal/store"
	"github.com/mila-iqia/bibmerge/internal/workset"
)

var foldInput string

func init() {
	foldCmd.Flags().StringVar(&foldInput, "input", "", "Candidate JSONL file (default: repository candidates.jsonl)")
	rootCmd.AddCommand(foldCmd)
}

var foldCmd = &cobra.Command{
	Use:   "fold",
	Short: "Fold candidate records into canonical papers",
	Long: `Fold a batch of candidate records into per-key working sets and
persist the resulting canonical papers with full provenance.

Candidates already stored for a key are replayed first, so folding is
incremental across batches.

Examples:
  bib fold                        # Fold the repository candidates.jsonl
  bib fold --input batch.jsonl    # Fold an external batch`,
	RunE: runFold,
}

// FoldResult summarizes one fold run.
type FoldResult struct {
	Candidates int      `json:"candidates"`
	Skipped    int      `json:"skipped"`
	Papers     int      `json:"papers"`
	Keys       []string `json:"keys"`
}

func runFold(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	input := foldInput
	if input == "" {
		input = config.CandidatesPath(repoRoot)
	}

	batch, err := source.ReadBatch(input)
	if err != nil {
		exitWithError(ExitDataError, "reading candidates: %v", err)
	}
	if len(batch) == 0 {
		if humanOutput {
			fmt.Println("No candidates to fold.")
		} else {
			outputJSON(FoldResult{Keys: []string{}})
		}
		return nil
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	// Candidates that carry no weight of their own fold at the
	// repository's configured default.
	defaultWeight := 0.0
	if cfg, err := config.Load(repoRoot); err == nil {
		defaultWeight = cfg.DefaultWeight
	}

	acc := workset.NewAccumulator()

	// Replay stored provenance so new batches fold on top of what
	// earlier runs already collected.
	folded, err := replayProvenance(db, acc, batch)
	if err != nil {
		exitWithError(ExitDataError, "replaying provenance: %v", err)
	}

	skipped := 0
	var provenance []store.ProvenanceRow
	for _, c := range batch {
		raw, err := json.Marshal(c.Paper)
		if err != nil {
			exitWithError(ExitDataError, "encoding candidate for %s: %v", c.Key, err)
		}
		weight := c.Weight
		if weight == 0 {
			weight = defaultWeight
		}
		cand := workset.Candidate{
			Origin:      c.Origin,
			Weight:      weight,
			Record:      c.Paper.Value(weight),
			Fingerprint: workset.Fingerprint(raw),
		}
		// Already collected in an earlier run; folding it again would
		// duplicate provenance.
		if folded[c.Key][cand.Fingerprint] {
			skipped++
			continue
		}
		if err := acc.Fold(c.Key, cand); err != nil {
			var mismatch *merge.MismatchError
			if errors.As(err, &mismatch) {
				exitWithError(ExitDataError, "folding %s: %v", c.Key, err)
			}
			exitWithError(ExitError, "folding %s: %v", c.Key, err)
		}
		seq := len(acc.Get(c.Key).Collected) - 1
		provenance = append(provenance, store.ProvenanceRow{
			Key:         c.Key,
			Seq:         seq,
			Origin:      c.Origin,
			Weight:      weight,
			Fingerprint: cand.Fingerprint,
			Record:      raw,
		})
	}

	// Persist canonical papers: database, then the JSONL source of truth.
	var papers []paper.Paper
	for _, key := range acc.Keys() {
		ws := acc.Get(key)
		p, err := paper.FromValue(key, ws.Current)
		if err != nil {
			exitWithError(ExitDataError, "decoding merged record for %s: %v", key, err)
		}
		if err := db.UpsertPaper(p); err != nil {
			exitWithError(ExitError, "storing paper %s: %v", key, err)
		}
		papers = append(papers, p)
	}
	if err := db.AppendProvenance(provenance); err != nil {
		exitWithError(ExitError, "storing provenance: %v", err)
	}
	if err := writeCanonicalPapers(repoRoot, db); err != nil {
		exitWithError(ExitError, "writing papers.jsonl: %v", err)
	}

	result := FoldResult{
		Candidates: len(batch),
		Skipped:    skipped,
		Papers:     len(papers),
		Keys:       acc.Keys(),
	}
	if humanOutput {
		fmt.Printf("Folded %d candidates (%d already collected) into %d papers\n",
			result.Candidates, result.Skipped, result.Papers)
		for _, p := range papers {
			fmt.Printf("  %s: %s\n", p.Key, truncateString(p.Title, ListTitleMaxLen))
		}
		return nil
	}
	return outputJSON(result)
}

// replayProvenance refolds the stored candidate history of every key
// present in the incoming batch, in original order. It returns the
// fingerprints folded per key so the caller can skip candidates that were
// already collected.
func replayProvenance(db *store.DB, acc *workset.Accumulator, batch []source.Candidate) (map[string]map[string]bool, error) {
	folded := make(map[string]map[string]bool)
	for _, c := range batch {
		if _, seen := folded[c.Key]; seen {
			continue
		}
		folded[c.Key] = make(map[string]bool)

		rows, err := db.Provenance(c.Key)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			var p paper.Paper
			if err := json.Unmarshal(r.Record, &p); err != nil {
				return nil, fmt.Errorf("decoding stored candidate %s/%d: %w", r.Key, r.Seq, err)
			}
			cand := workset.Candidate{
				Origin:      r.Origin,
				Weight:      r.Weight,
				Record:      p.Value(r.Weight),
				Fingerprint: r.Fingerprint,
			}
			if err := acc.Fold(r.Key, cand); err != nil {
				return nil, err
			}
			folded[c.Key][r.Fingerprint] = true
		}
	}
	return folded, nil
}

// writeCanonicalPapers regenerates papers.jsonl from the database.
func writeCanonicalPapers(repoRoot string, db *store.DB) error {
	papers, err := db.ListPapers()
	if err != nil {
		return err
	}
	return store.WritePapers(config.PapersPath(repoRoot), papers)
}
