// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use private-use runes so they can never collide with
// markup delimiters.
const (
	holdOpen  = "\uE000"
	holdClose = "\uE001"
)

var (
	inlineFence  = regexp.MustCompile("```(.+?)```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	imageEmbed   = regexp.MustCompile(`!\[\[.+?\]\]`)
	imageLink    = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	displayInner = regexp.MustCompile(`\$\$.+?\$\$`)
	placeholder  = regexp.MustCompile(holdOpen + `(\d+)` + holdClose)
)

// shield swaps spans that emphasis rules must not touch for placeholders.
type shield struct {
	spans []string
}

func (s *shield) hold(text string) string {
	s.spans = append(s.spans, text)
	return holdOpen + strconv.Itoa(len(s.spans)-1) + holdClose
}

func (s *shield) protect(line string) string {
	if !strings.ContainsAny(line, "`$!") {
		return line
	}
	line = inlineFence.ReplaceAllStringFunc(line, func(m string) string {
		inner := inlineFence.FindStringSubmatch(m)[1]
		return s.hold("<pre><code>" + inner + "</code></pre>")
	})
	line = inlineCode.ReplaceAllStringFunc(line, func(m string) string {
		inner := inlineCode.FindStringSubmatch(m)[1]
		return s.hold("<code>" + inner + "</code>")
	})
	line = imageEmbed.ReplaceAllStringFunc(line, s.hold)
	line = imageLink.ReplaceAllStringFunc(line, s.hold)
	line = displayInner.ReplaceAllStringFunc(line, s.hold)
	return pairLone(line, '$', true, func(inner string) string {
		return s.hold("$" + inner + "$")
	})
}

func (s *shield) restore(text string) string {
	if len(s.spans) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(placeholder.FindStringSubmatch(m)[1])
		if err != nil || idx >= len(s.spans) {
			return m
		}
		return s.spans[idx]
	})
}
