// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

var (
	displayMath = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	verbatim    = regexp.MustCompile(`(?s)<pre>.*?</pre>|<code[^>]*>.*?</code>`)
)

// ConvertLaTeX rewrites $$..$$ spans to \[..\] and lone $..$ spans to \(..\)
// for MathJax. Text inside <pre> and <code> elements is left as is. Run it
// after Transform so math payload is never seen by the emphasis rules.
func ConvertLaTeX(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}
	regions := verbatim.FindAllStringIndex(text, -1)
	if len(regions) == 0 {
		return convertMath(text)
	}

	var b strings.Builder
	last := 0
	for _, r := range regions {
		b.WriteString(convertMath(text[last:r[0]]))
		b.WriteString(text[r[0]:r[1]])
		last = r[1]
	}
	b.WriteString(convertMath(text[last:]))
	return b.String()
}

func convertMath(s string) string {
	s = displayMath.ReplaceAllString(s, `\[${1}\]`)
	return pairLone(s, '$', true, func(inner string) string {
		return `\(` + inner + `\)`
	})
}
