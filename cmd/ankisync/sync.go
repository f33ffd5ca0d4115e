// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ankisync/internal/ankiconnect"
	"github.com/pdiddy/ankisync/internal/convert"
	"github.com/pdiddy/ankisync/internal/extract"
	"github.com/pdiddy/ankisync/internal/journal"
	"github.com/pdiddy/ankisync/internal/logging"
	"github.com/pdiddy/ankisync/internal/publish"
	"github.com/pdiddy/ankisync/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync [paths...]",
	Short: "Publish notes as Anki cards",
	Long: `Sync walks the notes directory (or the given files and directories),
extracts every question/answer section, renders it to card HTML and adds it
to Anki through AnkiConnect. Decks are created on demand; embedded images are
uploaded to the Anki media folder.

Every card is attempted even when others fail. By default the command exits
0 on partial failure; use --strict to exit 1 when any card fails. Use
--dry-run to render cards without contacting Anki.`,
	RunE: runSync,
}

var syncFlagKeys = map[string]string{
	"notes_dir":            "notes-dir",
	"asset_root":           "asset-root",
	"extension":            "ext",
	"note_type":            "note-type",
	"extract.default_deck": "deck",
	"state_dir":            "state-dir",
	"sanitize":             "sanitize",
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, syncFlagKeys); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strict, _ := cmd.Flags().GetBool("strict")
	noJournal, _ := cmd.Flags().GetBool("no-journal")
	log := logging.L()

	paths, err := notePaths(cfg, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s notes found.\n", cfg.Extension)
		return nil
	}

	opts := publish.Options{
		Extractor: extract.New(cfg.Extract),
		NoteType:  cfg.NoteType,
		AssetRoot: cfg.AssetRoot,
		Logger:    log,
		Out:       cmd.OutOrStdout(),
	}
	if !dryRun {
		opts.Store = ankiconnect.New(ankiconnect.NewHTTPTransport(cfg.Store, nil), cfg.Store, cfg.NoteType)
	}
	if cfg.Sanitize {
		opts.Sanitizer = convert.NewSanitizer()
	}

	var run *journal.Run
	if !noJournal {
		j, err := journal.Open(cfg.StateDir)
		if err != nil {
			log.Warn("journal unavailable", "error", err)
		} else {
			defer j.Close()
			if run, err = j.Begin(dryRun); err != nil {
				log.Warn("journal unavailable", "error", err)
			} else {
				opts.Recorder = run
				log = log.With("run", run.ID())
				opts.Logger = log
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res := publish.New(opts).PublishPaths(ctx, paths)

	if run != nil {
		if err := run.Finish(res.Files, res.Added, res.Failed, res.Skipped, res.Media); err != nil {
			log.Warn("finishing journal run", "error", err)
		}
	}

	if strict && res.HasFailures() {
		return fmt.Errorf("%d card(s) failed", res.Failed)
	}
	return nil
}

// notePaths discovers note files under each argument, or under the
// configured notes directory when no arguments are given.
func notePaths(cfg types.Config, args []string) ([]string, error) {
	roots := args
	if len(roots) == 0 {
		roots = []string{cfg.NotesDir}
	}
	var paths []string
	for _, root := range roots {
		found, err := publish.Discover(expandPath(root), cfg.Extension)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

func init() {
	f := syncCmd.Flags()
	f.String("notes-dir", ".", "root of the note tree")
	f.String("asset-root", types.DefaultAssetRoot, "directory image references resolve against")
	f.String("ext", types.DefaultExtension, "note file extension")
	f.String("note-type", types.DefaultNoteType, "Anki note type with Front and Back fields")
	f.String("deck", types.DefaultDeck, "deck for notes without deck front-matter")
	f.String("state-dir", types.DefaultStateDir, "directory for the sync journal")
	f.Bool("sanitize", false, "clean card HTML with an allow-list policy")
	f.Bool("dry-run", false, "render cards without contacting Anki")
	f.Bool("strict", false, "exit 1 when any card fails")
	f.Bool("no-journal", false, "do not record the run in the journal")

	rootCmd.AddCommand(syncCmd)
}
