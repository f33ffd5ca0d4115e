// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup outside the card allow-list (scripts, event
// handlers, iframes) from rendered fields.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the card policy: user-generated-content defaults plus
// the table, code and image markup Transform emits.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowElements("br", "table", "thead", "tbody", "tr", "th", "td", "pre", "code", "ul", "li", "strong", "em", "img")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("border").Matching(regexp.MustCompile(`^\d+$`)).OnElements("table")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#.-]+$`)).OnElements("code")
	return &Sanitizer{policy: p}
}

// Sanitize returns html with disallowed elements and attributes removed.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
