// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/ankisync/internal/journal"
	"github.com/pdiddy/ankisync/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Long: `History reads the sync journal and lists recent runs with their card
totals. Use "history show <run-id>" to print the per-card outcomes of one run
as YAML; a unique id prefix is enough.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the card outcomes of one run as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer j.Close()
		return j.ExportYAML(cmd.OutOrStdout(), args[0])
	},
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.Recent(limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-6s  %-6s  %-7s  %-6s  %-5s  %s\n",
		"Run", "Started", "Files", "Added", "Skipped", "Failed", "Media", "Mode")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, r := range runs {
		mode := "sync"
		if r.DryRun {
			mode = "dry-run"
		}
		if r.FinishedAt.IsZero() {
			mode += " (unfinished)"
		}
		fmt.Fprintf(w, "%-8s  %-16s  %-6d  %-6d  %-7d  %-6d  %-5d  %s\n",
			r.ID[:8], humanize.Time(r.StartedAt), r.Files, r.Added, r.Skipped, r.Failed, r.Media, mode)
	}
	return nil
}

func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	if err := bindFlags(cmd, map[string]string{"state_dir": "state-dir"}); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.StateDir)
}

func init() {
	historyCmd.PersistentFlags().String("state-dir", types.DefaultStateDir, "directory holding the sync journal")
	historyCmd.Flags().Int("limit", 10, "number of runs to list")

	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
