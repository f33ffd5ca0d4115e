// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ankisync/internal/ankiconnect"
	"github.com/pdiddy/ankisync/internal/convert"
	"github.com/pdiddy/ankisync/pkg/types"
)

type memStore struct {
	decks    []string
	cards    []types.Card
	media    []string
	failDeck error
	failCard map[string]error
}

func (m *memStore) EnsureDeck(_ context.Context, name string) error {
	m.decks = append(m.decks, name)
	return m.failDeck
}

func (m *memStore) SubmitCard(_ context.Context, card types.Card) (int64, error) {
	if err := m.failCard[card.Front]; err != nil {
		return 0, err
	}
	m.cards = append(m.cards, card)
	return int64(len(m.cards)), nil
}

func (m *memStore) StoreMedia(_ context.Context, filename, _ string) (string, error) {
	m.media = append(m.media, filename)
	return filename, nil
}

type memRecorder struct {
	outcomes []types.Outcome
	err      error
}

func (r *memRecorder) Record(o types.Outcome) error {
	r.outcomes = append(r.outcomes, o)
	return r.err
}

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicNote = `---
deck: Algebra
tags: [math, groups]
---
## Question
What is **a group**?
## Answer
A set with $x$ and an operation.
---
## Question
Identity?
## Answer
*e*
`

func TestPublishFile(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "groups.md", basicNote)
	store := &memStore{}
	var out bytes.Buffer

	p := New(Options{Store: store, Out: &out})
	res := p.PublishFile(context.Background(), path)

	assert.Equal(t, 2, res.Added)
	assert.Zero(t, res.Failed)
	assert.Equal(t, []string{"Algebra"}, store.decks)
	require.Len(t, store.cards, 2)

	first := store.cards[0]
	assert.Equal(t, "Algebra", first.Deck)
	assert.Equal(t, types.DefaultNoteType, first.NoteType)
	assert.Equal(t, "What is <strong>a group</strong>?", first.Front)
	assert.Equal(t, `A set with \(x\) and an operation.`, first.Back)
	assert.Equal(t, []string{"math", "groups"}, first.Tags)
	assert.Equal(t, path, first.Source)
	assert.Equal(t, "<em>e</em>", store.cards[1].Back)

	assert.Contains(t, out.String(), "added:   [Algebra] What is <strong>a group</strong>?")
}

func TestPublishFile_DuplicateIdentitySkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeNote(t, dir, "a.md", "## Question\nSame\n## Answer\nOne\n")
	b := writeNote(t, dir, "b.md", "## Question\nSame\n## Answer\nTwo\n")
	store := &memStore{}
	rec := &memRecorder{}

	p := New(Options{Store: store, Recorder: rec})
	res := p.PublishPaths(context.Background(), []string{a, b})

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Total())
	require.Len(t, store.cards, 1)
	assert.Equal(t, "One", store.cards[0].Back)

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, types.OutcomeAdded, rec.outcomes[0].Status)
	assert.Equal(t, int64(1), rec.outcomes[0].NoteID)
	assert.Equal(t, types.OutcomeSkipped, rec.outcomes[1].Status)
}

func TestPublishFile_SameFrontDifferentDeck(t *testing.T) {
	dir := t.TempDir()
	a := writeNote(t, dir, "a.md", "---\ndeck: A\n---\n## Question\nQ\n## Answer\n1\n")
	b := writeNote(t, dir, "b.md", "---\ndeck: B\n---\n## Question\nQ\n## Answer\n2\n")
	store := &memStore{}

	res := New(Options{Store: store}).PublishPaths(context.Background(), []string{a, b})

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, []string{"A", "B"}, store.decks)
}

func TestPublishFile_StoreErrorsContinue(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md",
		"## Question\nbad\n## Answer\nx\n---\n## Question\ndup\n## Answer\ny\n---\n## Question\ngood\n## Answer\nz\n")
	store := &memStore{failCard: map[string]error{
		"bad": errors.New("model not found"),
		"dup": fmt.Errorf("addNote: %w", ankiconnect.ErrDuplicate),
	}}
	var out bytes.Buffer

	res := New(Options{Store: store, Out: &out}).PublishFile(context.Background(), path)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Diagnostics.Count(types.SeverityError))
	assert.Contains(t, out.String(), "failed:  [Default] bad (model not found)")
	assert.Contains(t, out.String(), "skipped: [Default] dup (already in store)")
}

func TestPublishFile_DeckFailureStillSubmits(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "## Question\nq\n## Answer\na\n")
	store := &memStore{failDeck: errors.New("collection closed")}

	res := New(Options{Store: store}).PublishFile(context.Background(), path)

	assert.Equal(t, 1, res.Added)
	require.Len(t, res.Diagnostics.ByStage(types.StageDeck), 1)
}

func TestPublishFile_UnreadableFile(t *testing.T) {
	var out bytes.Buffer
	p := New(Options{Store: &memStore{}, Out: &out})

	res := p.PublishFile(context.Background(), filepath.Join(t.TempDir(), "missing.md"))

	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, out.String(), "failed:")
}

func TestPublishFile_Media(t *testing.T) {
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(assets, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "pic.png"), []byte("12345"), 0o644))
	path := writeNote(t, dir, "notes/n.md",
		"## Question\nLook ![[pic.png]]\n## Answer\nAgain ![x](pic.png) and ![[lost.png]]\n")
	store := &memStore{}
	var out bytes.Buffer

	res := New(Options{Store: store, AssetRoot: assets, Out: &out}).PublishFile(context.Background(), path)

	assert.Equal(t, 1, res.Media)
	assert.Equal(t, []string{"pic.png"}, store.media)
	require.Len(t, store.cards, 1)
	assert.Equal(t, `Look <img src="pic.png">`, store.cards[0].Front)
	assert.Equal(t, `Again <img src="pic.png"> and ![[lost.png]]`, store.cards[0].Back)
	assert.Len(t, res.Diagnostics.ByStage(types.StageMedia), 1)
	assert.Contains(t, out.String(), "stored:  pic.png (5 B)")
}

func TestPublishFile_ImageInCodeFenceNotUploaded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("x"), 0o644))
	path := writeNote(t, dir, "n.md", "## Question\nSyntax?\n## Answer\n```\nsyntax: ![[pic.png]]\n```\n")
	store := &memStore{}

	res := New(Options{Store: store, AssetRoot: dir}).PublishFile(context.Background(), path)

	assert.Zero(t, res.Media)
	assert.Empty(t, store.media)
	require.Len(t, store.cards, 1)
	assert.Equal(t, "<pre><code>syntax: ![[pic.png]]</code></pre>", store.cards[0].Back)
}

func TestPublishPaths_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "## Question\nq\n## Answer\na ![[pic.png]]\n")
	var out bytes.Buffer

	p := New(Options{AssetRoot: dir, Out: &out})
	require.True(t, p.DryRun())
	res := p.PublishPaths(context.Background(), []string{path})

	assert.Equal(t, 1, res.Planned)
	assert.Zero(t, res.Added)
	assert.False(t, res.HasFailures())
	assert.Contains(t, out.String(), "would add: [Default] q")
	assert.Contains(t, out.String(), "Batch summary: 1 planned")
}

func TestPublishPaths_Summary(t *testing.T) {
	dir := t.TempDir()
	a := writeNote(t, dir, "a.md", basicNote)
	b := filepath.Join(dir, "missing.md")
	var out bytes.Buffer

	res := New(Options{Store: &memStore{}, Out: &out}).PublishPaths(context.Background(), []string{a, b})

	assert.Equal(t, 2, res.Files)
	assert.True(t, res.HasFailures())
	assert.Contains(t, out.String(), "Batch summary: 2 added, 0 skipped, 1 failed, 0 media (total: 3, files: 2)")
}

func TestPublishFile_JournalErrorIsWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "## Question\nq\n## Answer\na\n")
	rec := &memRecorder{err: errors.New("disk full")}

	res := New(Options{Store: &memStore{}, Recorder: rec}).PublishFile(context.Background(), path)

	assert.Equal(t, 1, res.Added)
	require.Len(t, res.Diagnostics.ByStage(types.StageJournal), 1)
	assert.Equal(t, types.SeverityWarning, res.Diagnostics[0].Severity)
}

func TestPublishFile_Sanitize(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "n.md", "## Question\nq <script>alert(1)</script>\n## Answer\n**a**\n")
	store := &memStore{}

	New(Options{Store: store, Sanitizer: convert.NewSanitizer()}).PublishFile(context.Background(), path)

	require.Len(t, store.cards, 1)
	assert.NotContains(t, store.cards[0].Front, "<script>")
	assert.Equal(t, "<strong>a</strong>", store.cards[0].Back)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "b.md", "")
	writeNote(t, dir, "a/c.md", "")
	writeNote(t, dir, "a/skip.txt", "")
	writeNote(t, dir, ".obsidian/ignored.md", "")

	paths, err := Discover(dir, ".md")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "c.md"),
		filepath.Join(dir, "b.md"),
	}, paths)

	single, err := Discover(filepath.Join(dir, "b.md"), ".md")
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = Discover(filepath.Join(dir, "nope"), ".md")
	assert.Error(t, err)
}
