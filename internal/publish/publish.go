// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish drives note files through the card pipeline and submits
// the resulting cards to the flashcard store. Every step continues on error;
// problems are collected as diagnostics and summarised at the end.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/ankisync/internal/ankiconnect"
	"github.com/pdiddy/ankisync/internal/convert"
	"github.com/pdiddy/ankisync/internal/extract"
	"github.com/pdiddy/ankisync/internal/media"
	"github.com/pdiddy/ankisync/pkg/types"
)

const previewLen = 40

// Store is the subset of the flashcard store the driver needs.
type Store interface {
	EnsureDeck(ctx context.Context, name string) error
	SubmitCard(ctx context.Context, card types.Card) (int64, error)
	StoreMedia(ctx context.Context, filename, data string) (string, error)
}

// Recorder receives one outcome per card. Errors are reported as warnings.
type Recorder interface {
	Record(o types.Outcome) error
}

// Options configures a Publisher.
type Options struct {
	// Store is the flashcard store. A nil Store makes the run a dry run.
	Store     Store
	Extractor *extract.Extractor
	NoteType  string
	AssetRoot string

	// Sanitizer, when set, cleans every rendered field.
	Sanitizer *convert.Sanitizer

	// Recorder, when set, journals card outcomes.
	Recorder Recorder

	Logger *slog.Logger
	Out    io.Writer
}

// Publisher submits cards for one run. Card identity is tracked for the
// lifetime of the Publisher, so use a new one per run.
type Publisher struct {
	opts     Options
	resolver *media.Resolver
	seen     map[string]bool
}

// New creates a Publisher, filling unset options with defaults.
func New(opts Options) *Publisher {
	if opts.Extractor == nil {
		opts.Extractor = extract.New(types.ExtractConfig{})
	}
	if opts.NoteType == "" {
		opts.NoteType = types.DefaultNoteType
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	var ms media.Store
	if opts.Store != nil {
		ms = opts.Store
	}
	return &Publisher{
		opts:     opts,
		resolver: media.NewResolver(opts.AssetRoot, ms),
		seen:     make(map[string]bool),
	}
}

// DryRun reports whether the Publisher has no store to submit to.
func (p *Publisher) DryRun() bool {
	return p.opts.Store == nil
}

// FileResult holds the outcome of publishing one note file.
type FileResult struct {
	Path    string
	Added   int
	Planned int
	Skipped int
	Failed  int
	Media   int

	Diagnostics types.Diagnostics
}

// BatchResult holds the outcome of a multi-file run.
type BatchResult struct {
	Files   int
	Added   int
	Planned int
	Skipped int
	Failed  int
	Media   int

	Diagnostics types.Diagnostics
}

// Total returns the number of cards processed.
func (r BatchResult) Total() int {
	return r.Added + r.Planned + r.Skipped + r.Failed
}

// HasFailures reports whether any card or file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(f FileResult) {
	r.Files++
	r.Added += f.Added
	r.Planned += f.Planned
	r.Skipped += f.Skipped
	r.Failed += f.Failed
	r.Media += f.Media
	r.Diagnostics = append(r.Diagnostics, f.Diagnostics...)
}

// PublishPaths publishes each file in order, printing per-card status lines
// and a final summary to the status writer.
func (p *Publisher) PublishPaths(ctx context.Context, paths []string) BatchResult {
	var result BatchResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			p.opts.Logger.Warn("run cancelled", "remaining", len(paths)-result.Files, "error", err)
			break
		}
		result.add(p.PublishFile(ctx, path))
	}

	w := p.opts.Out
	if p.DryRun() {
		fmt.Fprintf(w, "\nBatch summary: %d planned, %d skipped, %d failed (total: %d, files: %d)\n",
			result.Planned, result.Skipped, result.Failed, result.Total(), result.Files)
	} else {
		fmt.Fprintf(w, "\nBatch summary: %d added, %d skipped, %d failed, %d media (total: %d, files: %d)\n",
			result.Added, result.Skipped, result.Failed, result.Media, result.Total(), result.Files)
	}
	if n := result.Diagnostics.Count(types.SeverityWarning); n > 0 {
		fmt.Fprintf(w, "%d warning(s)\n", n)
	}
	return result
}

// PublishFile parses one note file, builds its cards, ensures the deck and
// submits every card not already submitted in this run.
func (p *Publisher) PublishFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}
	log := p.opts.Logger.With("file", path)
	w := p.opts.Out

	note, diags, err := p.opts.Extractor.ParseFile(path)
	if err != nil {
		res.Failed++
		res.Diagnostics = append(res.Diagnostics, types.Fail(types.StageExtract, path, "", err))
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		log.Error("reading note", "error", err)
		return res
	}
	p.warn(&res, diags...)
	if len(note.Segments) == 0 {
		log.Debug("no question segments")
		return res
	}

	scope := p.resolver.Begin()
	cards, diags := BuildCards(ctx, note, p.opts.NoteType, scope, p.opts.Sanitizer)
	p.warn(&res, diags...)

	for _, asset := range scope.Uploaded() {
		res.Media++
		fmt.Fprintf(w, "stored:  %s (%s)\n", asset.Filename, humanize.Bytes(uint64(asset.Size)))
	}

	if p.DryRun() {
		for _, card := range cards {
			p.plan(&res, card)
		}
		return res
	}

	deck := note.Meta.Deck
	if err := p.opts.Store.EnsureDeck(ctx, deck); err != nil {
		res.Diagnostics = append(res.Diagnostics, types.Fail(types.StageDeck, path, deck, err))
		fmt.Fprintf(w, "failed:  deck %s (%v)\n", deck, err)
		log.Error("ensuring deck", "deck", deck, "error", err)
	}

	for _, card := range cards {
		p.submit(ctx, &res, card)
	}
	log.Info("published note", "added", res.Added, "skipped", res.Skipped, "failed", res.Failed)
	return res
}

func (p *Publisher) plan(res *FileResult, card types.Card) {
	if p.seen[card.Identity()] {
		res.Skipped++
		fmt.Fprintf(p.opts.Out, "skipped: [%s] %s (duplicate in this run)\n", card.Deck, card.Preview(previewLen))
		p.record(res, card, types.OutcomeSkipped, "duplicate in this run", 0)
		return
	}
	p.seen[card.Identity()] = true
	res.Planned++
	fmt.Fprintf(p.opts.Out, "would add: [%s] %s\n", card.Deck, card.Preview(previewLen))
	p.record(res, card, types.OutcomePlanned, "", 0)
}

func (p *Publisher) submit(ctx context.Context, res *FileResult, card types.Card) {
	w := p.opts.Out
	if p.seen[card.Identity()] {
		res.Skipped++
		fmt.Fprintf(w, "skipped: [%s] %s (duplicate in this run)\n", card.Deck, card.Preview(previewLen))
		p.record(res, card, types.OutcomeSkipped, "duplicate in this run", 0)
		return
	}
	p.seen[card.Identity()] = true

	id, err := p.opts.Store.SubmitCard(ctx, card)
	switch {
	case errors.Is(err, ankiconnect.ErrDuplicate):
		res.Skipped++
		res.Diagnostics = append(res.Diagnostics, types.Warn(types.StageCard, card.Source, card.Preview(previewLen), err))
		fmt.Fprintf(w, "skipped: [%s] %s (already in store)\n", card.Deck, card.Preview(previewLen))
		p.record(res, card, types.OutcomeSkipped, err.Error(), 0)
	case err != nil:
		res.Failed++
		res.Diagnostics = append(res.Diagnostics, types.Fail(types.StageCard, card.Source, card.Preview(previewLen), err))
		fmt.Fprintf(w, "failed:  [%s] %s (%v)\n", card.Deck, card.Preview(previewLen), err)
		p.opts.Logger.Error("submitting card", "file", card.Source, "deck", card.Deck, "error", err)
		p.record(res, card, types.OutcomeFailed, err.Error(), 0)
	default:
		res.Added++
		fmt.Fprintf(w, "added:   [%s] %s\n", card.Deck, card.Preview(previewLen))
		p.record(res, card, types.OutcomeAdded, "", id)
	}
}

func (p *Publisher) warn(res *FileResult, diags ...types.Diagnostic) {
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, d)
		fmt.Fprintf(p.opts.Out, "warning: %s: %s\n", d.Source, d)
		p.opts.Logger.Warn(string(d.Stage), "file", d.Source, "subject", d.Subject, "error", d.Err)
	}
}

func (p *Publisher) record(res *FileResult, card types.Card, status types.OutcomeStatus, msg string, id int64) {
	if p.opts.Recorder == nil {
		return
	}
	err := p.opts.Recorder.Record(types.Outcome{
		Source:  card.Source,
		Deck:    card.Deck,
		Front:   card.Front,
		Status:  status,
		Message: msg,
		NoteID:  id,
	})
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, types.Warn(types.StageJournal, card.Source, card.Preview(previewLen), err))
		p.opts.Logger.Warn("journal write failed", "error", err)
	}
}
