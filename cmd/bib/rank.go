package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/paper"
	"github.com/mila-iqia/bibmerge/internal/rank"
)

var rankLimit int

func init() {
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "Number of papers to keep (default: config rank_size)")
	rootCmd.AddCommand(rankCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank canonical papers by relevance",
	Long: `Rank stored canonical papers with a bounded top-N ranker. Relevance
is the citation count; papers with zero relevance are dropped.`,
	RunE: runRank,
}

// RankedPaper is one ranked result.
type RankedPaper struct {
	Key       string  `json:"key"`
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
}

func runRank(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	limit := rankLimit
	if limit <= 0 {
		limit = config.DefaultRankSize
		if cfg, err := config.Load(repoRoot); err == nil && cfg.RankSize > 0 {
			limit = cfg.RankSize
		}
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	papers, err := db.ListPapers()
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	top := rank.New[*paper.Scored](limit, true)
	for i := range papers {
		top.Add(&paper.Scored{Paper: papers[i], Relevance: float64(papers[i].CitationCount)})
	}

	results := make([]RankedPaper, 0, top.Len())
	for _, s := range top.Items() {
		results = append(results, RankedPaper{
			Key:       s.Paper.Key,
			Title:     s.Paper.Title,
			Relevance: s.Relevance,
		})
	}

	if humanOutput {
		for i, r := range results {
			fmt.Printf("%d. [%.0f] %s\n   %s\n", i+1, r.Relevance, r.Key, truncateString(r.Title, ListTitleMaxLen))
		}
		return nil
	}
	return outputJSON(results)
}
