package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout/internal/review"
	"github.com/oppscout/oppscout/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Triage stored opportunities interactively",
	Long:  "Open the terminal UI to browse stored opportunities, inspect score breakdowns and contacts, and update statuses.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	return review.Run(sqlStore)
}
