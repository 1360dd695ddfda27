package main

import (
	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/paper"
	"github.com/mila-iqia/bibmerge/internal/store"
)

var getProvenance bool

func init() {
	getCmd.Flags().BoolVar(&getProvenance, "provenance", false, "Include the raw candidate history")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one canonical paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

// GetResponse is the response for the get command.
type GetResponse struct {
	Paper      paper.Paper           `json:"paper"`
	Provenance []store.ProvenanceRow `json:"provenance,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	key := args[0]

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	p, err := db.GetByKey(key)
	if err != nil {
		exitWithError(ExitError, "looking up %s: %v", key, err)
	}
	if p == nil {
		exitWithError(ExitDataError, "no paper with key %s", key)
	}

	resp := GetResponse{Paper: *p}
	if getProvenance {
		rows, err := db.Provenance(key)
		if err != nil {
			exitWithError(ExitError, "reading provenance: %v", err)
		}
		resp.Provenance = rows
	}

	if humanOutput {
		printPaperHuman(*p)
		return nil
	}
	return outputJSON(resp)
}
