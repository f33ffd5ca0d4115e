// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads note files and pulls out their front-matter metadata
// and question/answer segments.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ankisync/pkg/types"
)

const fmDelim = "---"

var (
	// separatorLine is a horizontal rule ending an answer.
	separatorLine = regexp.MustCompile(`^\s*-{3,}\s*$`)

	fallbackDeck = regexp.MustCompile(`(?m)^\s*(?:anki-)?deck:\s*(\S+)`)
	fallbackTags = regexp.MustCompile(`(?m)^\s*(?:anki-)?tags:\s*\[(.*?)\]`)
)

var yamlFormat = frontmatter.NewFormat(fmDelim, fmDelim, yaml.Unmarshal)

// header mirrors the front-matter keys. Values are decoded loosely so a
// numeric deck or a scalar tag list still parses.
type header struct {
	Deck     any `yaml:"deck"`
	AnkiDeck any `yaml:"anki-deck"`
	Tags     any `yaml:"tags"`
	AnkiTags any `yaml:"anki-tags"`
}

// Extractor parses note files using the configured section markers.
type Extractor struct {
	defaultDeck string
	questions   []string
	answers     []string
}

// New creates an Extractor from cfg. Empty marker lists fall back to the
// package defaults.
func New(cfg types.ExtractConfig) *Extractor {
	e := &Extractor{
		defaultDeck: cfg.DefaultDeck,
		questions:   cfg.QuestionMarkers,
		answers:     cfg.AnswerMarkers,
	}
	if e.defaultDeck == "" {
		e.defaultDeck = types.DefaultDeck
	}
	if len(e.questions) == 0 {
		e.questions = types.DefaultQuestionMarkers
	}
	if len(e.answers) == 0 {
		e.answers = types.DefaultAnswerMarkers
	}
	return e
}

// ParseFile reads path and parses it. A read failure is returned as an error;
// everything else is reported through diagnostics.
func (e *Extractor) ParseFile(path string) (types.Note, types.Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Note{Path: path}, nil, fmt.Errorf("reading note %s: %w", path, err)
	}
	note, diags := e.Parse(path, data)
	return note, diags, nil
}

// Parse splits src into front-matter and body, then scans the body for
// segments. It never fails: a malformed header yields a warning and a
// line-based fallback read of the same block.
func (e *Extractor) Parse(path string, src []byte) (types.Note, types.Diagnostics) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	note := types.Note{Path: path, Meta: types.NoteMeta{Deck: e.defaultDeck}}
	var diags types.Diagnostics

	var h header
	body, err := frontmatter.Parse(bytes.NewReader(src), &h, yamlFormat)
	if err != nil {
		block, rest, found := splitHeader(string(src))
		if found {
			diags = append(diags, types.Warn(types.StageExtract, path, "front-matter",
				fmt.Errorf("decoding front-matter: %w", err)))
			note.Meta = e.scanHeader(block)
		}
		body = []byte(rest)
	} else {
		note.Meta = e.decodeHeader(h)
	}

	note.Segments = e.Segments(string(body))
	for _, s := range note.Segments {
		if s.Question == "" || s.Answer == "" {
			diags = append(diags, types.Warn(types.StageExtract, path,
				fmt.Sprintf("segment %d", s.Index+1), errEmptyField))
		}
	}
	return note, diags
}

var errEmptyField = errors.New("empty question or answer passed through")

// splitHeader returns the block between a leading --- line and the next
// --- line. found is false when the document does not open with one.
func splitHeader(src string) (block, rest string, found bool) {
	lines := strings.SplitAfter(src, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != fmDelim {
		return "", src, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == fmDelim {
			return strings.Join(lines[1:i], ""), strings.Join(lines[i+1:], ""), true
		}
	}
	return "", src, false
}

func (e *Extractor) decodeHeader(h header) types.NoteMeta {
	meta := types.NoteMeta{Deck: e.defaultDeck}
	deck := h.Deck
	if deck == nil {
		deck = h.AnkiDeck
	}
	if deck != nil {
		if fields := strings.Fields(fmt.Sprint(deck)); len(fields) > 0 {
			meta.Deck = fields[0]
		}
	}
	tags := h.Tags
	if tags == nil {
		tags = h.AnkiTags
	}
	meta.Tags = normalizeTags(tags)
	return meta
}

// scanHeader reads deck and tags from a block that is not valid YAML.
func (e *Extractor) scanHeader(block string) types.NoteMeta {
	meta := types.NoteMeta{Deck: e.defaultDeck}
	if m := fallbackDeck.FindStringSubmatch(block); m != nil {
		meta.Deck = m[1]
	}
	if m := fallbackTags.FindStringSubmatch(block); m != nil {
		meta.Tags = splitTags(m[1])
	}
	return meta
}

func normalizeTags(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitTags(strings.Trim(strings.TrimSpace(t), "[]"))
	default:
		return splitTags(fmt.Sprint(t))
	}
}

func splitTags(list string) []string {
	var out []string
	for _, tag := range strings.Split(list, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
