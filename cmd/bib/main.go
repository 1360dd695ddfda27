// Package main provides the bib CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
	"github.com/mila-iqia/bibmerge/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bib",
	Short: "Bibliographic record reconciliation CLI",
	Long: `bib reconciles bibliographic records produced by many unreliable
sources into one canonical record per paper.

Core features:
  - Confidence-weighted merging of candidate records (fold)
  - Identifier consolidation from equivalence evidence (consolidate)
  - Bounded top-N relevance ranking of canonical records (rank)
  - Candidate extraction from PDFs and a paper metadata API

Canonical data is stored in git-versionable JSONL with ephemeral SQLite
for queries. All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Local .env can hold SCHOLAR_API_KEY; absence is fine.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// repository: global config root_path first, then the working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetRootPath(); root != "" {
		return root, 0
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error. The caller
// is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *store.DB {
	db, err := store.Open(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
