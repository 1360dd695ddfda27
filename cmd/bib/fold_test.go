package main

import (
	"testing"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/paper"
	"github.com/mila-iqia/bibmerge/internal/source"
	"github.com/mila-iqia/bibmerge/internal/store"
)

// setupRepo initializes a repository in a temp directory and makes it the
// working directory for repository discovery.
func setupRepo(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // no global config interference
	config.ResetGlobalConfigCache()
	t.Cleanup(config.ResetGlobalConfigCache)

	root := t.TempDir()
	if err := runInit(initCmd, []string{root}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Chdir(root)
	return root
}

func TestRunFold(t *testing.T) {
	root := setupRepo(t)

	candidates := config.CandidatesPath(root)
	lowTrust := source.Candidate{
		Key:    "10.1234/a",
		Origin: "pdf:draft.pdf",
		Weight: -5,
		Paper:  paper.Paper{Key: "10.1234/a", Title: "Draft Title"},
	}
	highTrust := source.Candidate{
		Key:    "10.1234/a",
		Origin: "scholar:abc",
		Weight: 5,
		Paper: paper.Paper{
			Key:     "10.1234/a",
			Title:   "Final Title",
			Venue:   "NeurIPS",
			Authors: []paper.PaperAuthor{{Name: "Alice Johnson"}},
		},
	}
	if err := source.AppendCandidate(candidates, lowTrust); err != nil {
		t.Fatal(err)
	}
	if err := source.AppendCandidate(candidates, highTrust); err != nil {
		t.Fatal(err)
	}

	if err := runFold(foldCmd, nil); err != nil {
		t.Fatalf("fold: %v", err)
	}

	db, err := store.Open(config.DBPath(root))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	p, err := db.GetByKey("10.1234/a")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("expected paper stored")
	}
	if p.Title != "Final Title" {
		t.Errorf("expected high-trust title, got %q", p.Title)
	}
	if len(p.Authors) != 1 || p.Authors[0].Name != "Alice Johnson" {
		t.Errorf("unexpected authors: %+v", p.Authors)
	}

	rows, err := db.Provenance("10.1234/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 provenance rows, got %d", len(rows))
	}
	if rows[0].Origin != "pdf:draft.pdf" || rows[1].Origin != "scholar:abc" {
		t.Errorf("unexpected provenance order: %q, %q", rows[0].Origin, rows[1].Origin)
	}

	jsonl, err := store.ReadPapers(config.PapersPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if len(jsonl) != 1 || jsonl[0].Title != "Final Title" {
		t.Errorf("expected canonical JSONL regenerated, got %+v", jsonl)
	}
}

func TestRunFold_DefaultWeight(t *testing.T) {
	root := setupRepo(t)

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg.DefaultWeight = 5
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	candidates := config.CandidatesPath(root)
	explicit := source.Candidate{
		Key:    "10.1234/a",
		Origin: "scholar:abc",
		Weight: 2,
		Paper:  paper.Paper{Key: "10.1234/a", Title: "Explicit"},
	}
	unweighted := source.Candidate{
		Key:    "10.1234/a",
		Origin: "pdf:scan.pdf",
		Paper:  paper.Paper{Key: "10.1234/a", Title: "Defaulted"},
	}
	if err := source.AppendCandidate(candidates, explicit); err != nil {
		t.Fatal(err)
	}
	if err := source.AppendCandidate(candidates, unweighted); err != nil {
		t.Fatal(err)
	}

	if err := runFold(foldCmd, nil); err != nil {
		t.Fatalf("fold: %v", err)
	}

	db, err := store.Open(config.DBPath(root))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	p, err := db.GetByKey("10.1234/a")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("expected paper stored")
	}
	if p.Title != "Defaulted" {
		t.Errorf("expected the configured default weight to outrank the explicit 2, got title %q", p.Title)
	}

	rows, err := db.Provenance("10.1234/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 provenance rows, got %d", len(rows))
	}
	if rows[1].Weight != 5 {
		t.Errorf("expected substituted weight recorded in provenance, got %v", rows[1].Weight)
	}
}

func TestRunFold_Idempotent(t *testing.T) {
	root := setupRepo(t)

	cand := source.Candidate{
		Key:    "10.1234/a",
		Origin: "scholar:abc",
		Weight: 5,
		Paper:  paper.Paper{Key: "10.1234/a", Title: "Final Title"},
	}
	if err := source.AppendCandidate(config.CandidatesPath(root), cand); err != nil {
		t.Fatal(err)
	}

	if err := runFold(foldCmd, nil); err != nil {
		t.Fatalf("first fold: %v", err)
	}
	if err := runFold(foldCmd, nil); err != nil {
		t.Fatalf("second fold: %v", err)
	}

	db, err := store.Open(config.DBPath(root))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Provenance("10.1234/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected re-folding the same batch to collect nothing new, got %d rows", len(rows))
	}
}
