package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List canonical papers",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	papers, err := db.ListPapers()
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	if humanOutput {
		for _, p := range papers {
			year := ""
			if p.Published.Year != 0 {
				year = fmt.Sprintf(" (%d)", p.Published.Year)
			}
			fmt.Printf("%s: %s%s\n", p.Key, truncateString(p.Title, ListTitleMaxLen), year)
		}
		return nil
	}
	return outputJSON(papers)
}
