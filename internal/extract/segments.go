// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/ankisync/pkg/types"
)

type scanState int

const (
	stateIdle scanState = iota
	stateQuestion
	stateAnswer
)

// Segments scans a note body for question/answer pairs in source order.
//
// A question marker opens a question, an answer marker switches to the
// answer, and the answer runs until a horizontal rule, the next question
// marker or the end of text. A question that meets a rule or another
// question marker before any answer marker yields nothing.
func (e *Extractor) Segments(body string) []types.Segment {
	var (
		segs  []types.Segment
		q, a  strings.Builder
		state = stateIdle
	)

	flush := func() {
		if state == stateAnswer {
			segs = append(segs, types.Segment{
				Index:    len(segs),
				Question: strings.TrimSpace(q.String()),
				Answer:   strings.TrimSpace(a.String()),
			})
		}
		q.Reset()
		a.Reset()
		state = stateIdle
	}

	for _, line := range strings.Split(body, "\n") {
		if rest, ok := matchMarker(line, e.questions); ok {
			flush()
			state = stateQuestion
			q.WriteString(rest + "\n")
			continue
		}
		if state == stateQuestion {
			if rest, ok := matchMarker(line, e.answers); ok {
				state = stateAnswer
				a.WriteString(rest + "\n")
				continue
			}
		}
		if separatorLine.MatchString(line) {
			flush()
			continue
		}

		switch state {
		case stateQuestion:
			q.WriteString(line + "\n")
		case stateAnswer:
			a.WriteString(line + "\n")
		}
	}
	flush()
	return segs
}

// matchMarker reports whether line opens with one of markers as a whole
// word and returns the text after it.
func matchMarker(line string, markers []string) (string, bool) {
	t := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, m := range markers {
		if !strings.HasPrefix(t, m) {
			continue
		}
		rest := t[len(m):]
		if rest == "" {
			return "", true
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
