package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/source"
)

var fromPDFAppend bool

func init() {
	fromPDFCmd.Flags().BoolVar(&fromPDFAppend, "append", false, "Append the candidate to the repository candidates.jsonl")
	rootCmd.AddCommand(fromPDFCmd)
}

var fromPDFCmd = &cobra.Command{
	Use:   "frompdf <file.pdf>",
	Short: "Extract a candidate record from a PDF",
	Long: `Scan a PDF for a DOI and a title guess and produce a low-confidence
candidate record. The candidate is printed as JSON, or appended to the
repository candidates.jsonl with --append so a later fold picks it up.`,
	Args: cobra.ExactArgs(1),
	RunE: runFromPDF,
}

func runFromPDF(cmd *cobra.Command, args []string) error {
	cand, err := source.FromPDF(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	if fromPDFAppend {
		repoRoot := mustFindRepository()
		if err := source.AppendCandidate(config.CandidatesPath(repoRoot), cand); err != nil {
			exitWithError(ExitError, "appending candidate: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Key:    %s\n", cand.Key)
		fmt.Printf("Title:  %s\n", cand.Paper.Title)
		fmt.Printf("Weight: %.1f\n", cand.Weight)
		if fromPDFAppend {
			fmt.Println("Appended to candidates.jsonl")
		}
		return nil
	}
	return outputJSON(cand)
}
