// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<strong>ok</strong><script>alert(1)</script><img src="pic.png" onerror="x()">`)

	assert.Contains(t, out, "<strong>ok</strong>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, `src="pic.png"`)
}

func TestSanitizer_KeepsCardMarkup(t *testing.T) {
	s := NewSanitizer()
	in := Transform("| A |\n|---|\n| 1 |\n- *x*")

	out := s.Sanitize(in)

	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "<th>A</th>")
	assert.Contains(t, out, "<li><em>x</em></li>")
}
