// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ankisync/internal/scaffold"
	"github.com/pdiddy/ankisync/pkg/types"
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate question notes from question lists",
	Long: `Scaffold manages placeholder question notes. Use subcommands to
generate numbered notes from question lists or to append a link line to
existing notes.`,
}

var scaffoldGenerateCmd = &cobra.Command{
	Use:   "generate <base-dir>",
	Short: "Generate numbered notes for every question list under base-dir",
	Long: `Generate walks base-dir for question list files. Each list holds
"Дисциплина - <name>" (or "Discipline - <name>") lines followed by numbered
questions. For every list a sibling directory receives 001.md, 002.md, ...
filled from the template, with circular previous/next links. The list's
directory name is used as the direction. Existing notes are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, _ := cmd.Flags().GetString("template")
		listName, _ := cmd.Flags().GetString("list-name")
		outName, _ := cmd.Flags().GetString("out-dir-name")

		res, err := scaffold.Process(expandPath(args[0]), expandPath(tmpl), listName, outName, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if res.HasFailures() {
			return fmt.Errorf("%d question list(s) failed", res.Failed)
		}
		return nil
	},
}

var scaffoldLinkCmd = &cobra.Command{
	Use:   "link <dir> <line>",
	Short: "Append a line to every note in dir that lacks it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := scaffold.AppendLink(expandPath(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated: %d file(s)\n", n)
		return nil
	},
}

func init() {
	scaffoldGenerateCmd.Flags().String("template", "Шаблоны/Шаблон вопроса.md", "note template file")
	scaffoldGenerateCmd.Flags().String("list-name", types.DefaultListName, "question list file name")
	scaffoldGenerateCmd.Flags().String("out-dir-name", types.DefaultQuestionDir, "directory created beside each list")

	scaffoldCmd.AddCommand(scaffoldGenerateCmd)
	scaffoldCmd.AddCommand(scaffoldLinkCmd)
	rootCmd.AddCommand(scaffoldCmd)
}
