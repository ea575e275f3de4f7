package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout/internal/store"
)

var (
	recentLimit  int
	recentStatus string
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently stored opportunities",
	Long:  "Reads the store and prints a table of the most recently discovered opportunities.",
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 20, "maximum rows to print (0 for all)")
	recentCmd.Flags().StringVarP(&recentStatus, "status", "s", "", "filter by status (new, interested, applied, rejected, archived)")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
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

	opps, err := sqlStore.ListRecent(recentLimit, recentStatus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list opportunities: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-5s %-25s %-35s %-20s %-11s %s\n", "Score", "Company", "Title", "Location", "Status", "First Seen")
	fmt.Println(strings.Repeat("─", 110))

	for _, o := range opps {
		fmt.Printf("%-5d %-25s %-35s %-20s %-11s %s\n",
			o.Score.Final,
			truncate(o.Posting.Company, 25),
			truncate(o.Posting.Title, 35),
			truncate(o.Posting.Location, 20),
			o.Status,
			o.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	fmt.Printf("\nTotal: %d opportunities\n", len(opps))
	return nil
}

// truncate shortens s to at most n runes, ellipsized. Counting runes keeps
// a multibyte character at the boundary from being split into invalid bytes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
