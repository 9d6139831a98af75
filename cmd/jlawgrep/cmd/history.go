package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srndpty/j-law-grep/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long: `Show recent searches, newest first. Repeated queries are listed
once, at their most recent position.`,
		Example: `  # Last 10 searches
  jlawgrep history

  # More, as JSON
  jlawgrep history -n 50 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of entries")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hist := newHistoryStore(cfg)
	if hist == nil {
		return fmt.Errorf("history is disabled in the configuration")
	}

	entries, err := hist.Recent(limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	out := output.New(cmd.OutOrStdout())
	if len(entries) == 0 {
		out.Status("", "no searches recorded yet")
		return nil
	}
	for i, e := range entries {
		out.Statusf("", "%2d. %s", i+1, e.String())
	}
	return nil
}
