package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/scholar"
	"github.com/mila-iqia/bibmerge/internal/source"
)

var fetchAppend bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchAppend, "append", false, "Append the candidate to the repository candidates.jsonl")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Fetch a candidate record from the scholar API",
	Long: `Fetch paper metadata by identifier and produce a high-confidence
candidate record. Identifiers follow the scholar API conventions
(DOI:10.x/..., ARXIV:2301.00001, or a raw paper id).

The candidate is printed as JSON, or appended to the repository
candidates.jsonl with --append so a later fold picks it up.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	client := newScholarClient()

	pr, err := client.Paper(cmd.Context(), args[0])
	if err != nil {
		var apiErr *scholar.APIError
		if errors.As(err, &apiErr) {
			exitWithError(ExitDataError, "fetching %s: %v", args[0], err)
		}
		exitWithError(ExitError, "fetching %s: %v", args[0], err)
	}

	cand := scholar.Candidate(pr)

	if fetchAppend {
		repoRoot := mustFindRepository()
		if err := source.AppendCandidate(config.CandidatesPath(repoRoot), cand); err != nil {
			exitWithError(ExitError, "appending candidate: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Key:    %s\n", cand.Key)
		fmt.Printf("Title:  %s\n", cand.Paper.Title)
		fmt.Printf("Weight: %.1f\n", cand.Weight)
		if fetchAppend {
			fmt.Println("Appended to candidates.jsonl")
		}
		return nil
	}
	return outputJSON(cand)
}

// newScholarClient builds an API client, honoring the repository's
// scholar_api_base override when run inside a repository. fetch also
// works outside one, so a missing repository or config is not an error.
func newScholarClient() *scholar.Client {
	var opts []scholar.Option
	if start, exitCode := getStartingDirectory(); exitCode == 0 {
		if root, err := config.FindRepository(start); err == nil {
			if cfg, err := config.Load(root); err == nil && cfg.ScholarAPIBase != "" {
				opts = append(opts, scholar.WithBaseURL(cfg.ScholarAPIBase))
			}
		}
	}
	return scholar.NewClient(opts...)
}
