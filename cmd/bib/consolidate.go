package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/cluster"
	"github.com/mila-iqia/bibmerge/internal/config"
)

var (
	consolidateInput  string
	consolidateDryRun bool
)

func init() {
	consolidateCmd.Flags().StringVar(&consolidateInput, "input", "", "Evidence JSONL file (default: repository evidence.jsonl)")
	consolidateCmd.Flags().BoolVar(&consolidateDryRun, "dry-run", false, "Show merge instructions without storing them")
	rootCmd.AddCommand(consolidateCmd)
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Cluster equivalent identifiers from evidence",
	Long: `Run equivalence evidence through the identifier registry and emit
merge instructions for every group of two or more linked identifiers.

Each evidence line is a JSON object: {"ids": [...], "label": "...",
"class": "..."}. Singleton id sets record labels only and never produce
an instruction.

Examples:
  bib consolidate --dry-run     # Show groups without storing
  bib consolidate               # Store merge instructions`,
	RunE: runConsolidate,
}

// ConsolidateResult summarizes one consolidation run.
type ConsolidateResult struct {
	DryRun       bool                  `json:"dry_run"`
	Evidence     int                   `json:"evidence"`
	Instructions []cluster.Instruction `json:"instructions"`
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	input := consolidateInput
	if input == "" {
		input = config.EvidencePath(repoRoot)
	}

	batch, err := cluster.ReadEvidence(input)
	if err != nil {
		exitWithError(ExitDataError, "reading evidence: %v", err)
	}

	registry := cluster.NewRegistry()
	cluster.Apply(registry, batch)
	instructions := registry.Emit()
	if instructions == nil {
		instructions = []cluster.Instruction{}
	}

	if !consolidateDryRun && len(instructions) > 0 {
		db := mustOpenDatabase(repoRoot)
		defer db.Close()
		if err := db.SaveInstructions(instructions); err != nil {
			exitWithError(ExitError, "storing instructions: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Processed %d evidence lines, %d merge groups:\n", len(batch), len(instructions))
		for _, ins := range instructions {
			fmt.Printf("  [%s] %s <- %s\n", ins.OutputClass, ins.Representative, strings.Join(ins.Members, ", "))
		}
		return nil
	}
	return outputJSON(ConsolidateResult{
		DryRun:       consolidateDryRun,
		Evidence:     len(batch),
		Instructions: instructions,
	})
}
