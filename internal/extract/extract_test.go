// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ankisync/pkg/types"
)

func newTestExtractor() *Extractor {
	return New(types.DefaultConfig().Extract)
}

func TestParse_FrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantDeck string
		wantTags []string
	}{
		{
			name:     "deck and bracketed tags",
			src:      "---\ndeck: Biology\ntags: [cells, bio ]\n---\n",
			wantDeck: "Biology",
			wantTags: []string{"cells", "bio"},
		},
		{
			name:     "anki prefixed keys",
			src:      "---\nanki-deck: Math::Algebra extra\nanki-tags: [x]\n---\n",
			wantDeck: "Math::Algebra",
			wantTags: []string{"x"},
		},
		{
			name:     "scalar tag list",
			src:      "---\ndeck: Chem\ntags: a, b\n---\n",
			wantDeck: "Chem",
			wantTags: []string{"a", "b"},
		},
		{
			name:     "numeric deck",
			src:      "---\ndeck: 2024\n---\n",
			wantDeck: "2024",
		},
		{
			name:     "no front-matter uses defaults",
			src:      "## Question\nq\n## Answer\na\n",
			wantDeck: types.DefaultDeck,
		},
		{
			name:     "front-matter without deck key",
			src:      "---\ntitle: x\n---\n",
			wantDeck: types.DefaultDeck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, diags := newTestExtractor().Parse("note.md", []byte(tt.src))

			assert.Zero(t, diags.Count(types.SeverityError))
			assert.Equal(t, tt.wantDeck, note.Meta.Deck)
			assert.Equal(t, tt.wantTags, note.Meta.Tags)
		})
	}
}

func TestParse_MalformedFrontMatterFallsBack(t *testing.T) {
	src := "---\ndeck: Chem\ntags: [a, b\n---\n## Question\nq\n## Answer\na\n"

	note, diags := newTestExtractor().Parse("bad.md", []byte(src))

	assert.Equal(t, "Chem", note.Meta.Deck)
	assert.Empty(t, note.Meta.Tags)
	require.Len(t, diags, 1)
	assert.Equal(t, types.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "front-matter", diags[0].Subject)
	require.Len(t, note.Segments, 1)
	assert.Equal(t, "q", note.Segments[0].Question)
}

func TestParse_Segments(t *testing.T) {
	src := `---
deck: Bio
tags: [a]
---
## Question
What is a cell?
## Answer
The smallest unit
of life.

---

## Question Define ATP.
## Answer
Energy currency.
`
	note, diags := newTestExtractor().Parse("bio.md", []byte(src))

	assert.Empty(t, diags)
	require.Len(t, note.Segments, 2)
	assert.Equal(t, types.Segment{Index: 0, Question: "What is a cell?", Answer: "The smallest unit\nof life."}, note.Segments[0])
	assert.Equal(t, types.Segment{Index: 1, Question: "Define ATP.", Answer: "Energy currency."}, note.Segments[1])
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []types.Segment
	}{
		{
			name: "question without answer before separator",
			body: "## Question\nq1\n---\n## Question\nq2\n## Answer\na2",
			want: []types.Segment{{Index: 0, Question: "q2", Answer: "a2"}},
		},
		{
			name: "question without answer before next question",
			body: "## Question\nq1\n## Question\nq2\n## Answer\na2",
			want: []types.Segment{{Index: 0, Question: "q2", Answer: "a2"}},
		},
		{
			name: "trailing question with no answer",
			body: "## Question\nq1\n## Answer\na1\n## Question\nq2",
			want: []types.Segment{{Index: 0, Question: "q1", Answer: "a1"}},
		},
		{
			name: "answer ends at next question",
			body: "## Question\nq1\n## Answer\na1\n## Question\nq2\n## Answer\na2",
			want: []types.Segment{
				{Index: 0, Question: "q1", Answer: "a1"},
				{Index: 1, Question: "q2", Answer: "a2"},
			},
		},
		{
			name: "table separator rows do not end an answer",
			body: "## Question\nq\n## Answer\n| A | B |\n|---|---|\n| 1 | 2 |",
			want: []types.Segment{{Index: 0, Question: "q", Answer: "| A | B |\n|---|---|\n| 1 | 2 |"}},
		},
		{
			name: "russian markers",
			body: "## Вопрос\nЧто такое клетка?\n## Ответ\nЕдиница жизни.",
			want: []types.Segment{{Index: 0, Question: "Что такое клетка?", Answer: "Единица жизни."}},
		},
		{
			name: "marker prefix of a longer word is not a marker",
			body: "## Questions\nnot a segment\n## Answer\nx",
		},
		{
			name: "empty captures are kept",
			body: "## Question\n## Answer\n",
			want: []types.Segment{{Index: 0}},
		},
		{
			name: "no markers",
			body: "just prose",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestExtractor().Segments(tt.body))
		})
	}
}

func TestParse_EmptyFieldDiagnostic(t *testing.T) {
	note, diags := newTestExtractor().Parse("n.md", []byte("## Question\nq\n## Answer\n"))

	require.Len(t, note.Segments, 1)
	assert.Equal(t, "", note.Segments[0].Answer)
	require.Len(t, diags, 1)
	assert.Equal(t, "segment 1", diags[0].Subject)
}

func TestParse_CustomMarkers(t *testing.T) {
	e := New(types.ExtractConfig{
		QuestionMarkers: []string{"Q:"},
		AnswerMarkers:   []string{"A:"},
	})

	segs := e.Segments("Q: two plus two\nA: four")

	require.Len(t, segs, 1)
	assert.Equal(t, "two plus two", segs[0].Question)
	assert.Equal(t, "four", segs[0].Answer)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "n.md")
	require.NoError(t, os.WriteFile(path, []byte("## Question\r\nq\r\n## Answer\r\na\r\n"), 0o644))

	note, _, err := newTestExtractor().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, note.Path)
	require.Len(t, note.Segments, 1)
	assert.Equal(t, "a", note.Segments[0].Answer)

	_, _, err = newTestExtractor().ParseFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}
