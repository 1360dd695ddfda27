package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mila-iqia/bibmerge/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a bibmerge repository",
	Long: `Create the .bibmerge directory layout in the given path (default:
current directory).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if config.IsRepository(abs) {
		exitWithError(ExitConfigError, "already a bibmerge repository: %s", abs)
	}

	if err := os.MkdirAll(config.CachePath(abs), 0755); err != nil {
		exitWithError(ExitError, "creating repository layout: %v", err)
	}

	cfg := &config.Config{RankSize: config.DefaultRankSize}
	if err := cfg.Save(abs); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized bibmerge repository in %s\n", config.BibmergePath(abs))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.BibmergePath(abs)})
	}
	return nil
}
