// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"path/filepath"

	"github.com/pdiddy/ankisync/internal/convert"
	"github.com/pdiddy/ankisync/internal/media"
	"github.com/pdiddy/ankisync/pkg/types"
)

// Render runs one field through the card pipeline: markup transform, image
// resolution, LaTeX delimiters and, when sanitizer is non-nil, HTML
// sanitising. scope may be nil, in which case images are left as written.
func Render(ctx context.Context, field string, scope *media.Scope, noteDir string, sanitizer *convert.Sanitizer) (string, types.Diagnostics) {
	out := convert.Transform(field)

	var diags types.Diagnostics
	if scope != nil {
		out, diags = scope.Resolve(ctx, out, noteDir)
	}

	out = convert.ConvertLaTeX(out)
	if sanitizer != nil {
		out = sanitizer.Sanitize(out)
	}
	return out, diags
}

// BuildCards renders every segment of note into a Card.
func BuildCards(ctx context.Context, note types.Note, noteType string, scope *media.Scope, sanitizer *convert.Sanitizer) ([]types.Card, types.Diagnostics) {
	noteDir := filepath.Dir(note.Path)

	var (
		cards []types.Card
		diags types.Diagnostics
	)
	for _, seg := range note.Segments {
		front, d := Render(ctx, seg.Question, scope, noteDir, sanitizer)
		diags = append(diags, d...)
		back, d := Render(ctx, seg.Answer, scope, noteDir, sanitizer)
		diags = append(diags, d...)

		cards = append(cards, types.Card{
			Deck:     note.Meta.Deck,
			NoteType: noteType,
			Front:    front,
			Back:     back,
			Tags:     append([]string(nil), note.Meta.Tags...),
			Source:   note.Path,
		})
	}
	return cards, diags
}
