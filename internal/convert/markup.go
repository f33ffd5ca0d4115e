// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert rewrites the markdown subset used in study notes into the
// HTML accepted by Anki card fields.
//
// Transform works line by line with a small state machine (plain, table,
// list, code fence, display math). Block rules run in a fixed order: tables,
// fenced code, emphasis, lists, then line breaks. Math, inline code and image
// references are shielded from emphasis rewriting and restored verbatim, so
// ConvertLaTeX and the media resolver still see their source syntax.
package convert

import (
	"regexp"
	"strings"
)

const lineBreak = "<br>"

var (
	tableLine  = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	bulletLine = regexp.MustCompile(`^\s*[-*+]\s+`)
	fenceInfo  = regexp.MustCompile(`^[\w+#.-]+$`)

	tripleStar  = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	tripleUnder = regexp.MustCompile(`___(.+?)___`)
	boldStar    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnder   = regexp.MustCompile(`__(.+?)__`)
)

// Transform converts one raw note fragment into card HTML. It never fails:
// constructs it cannot match are left as literal text.
func Transform(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var out []string
	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case isFenceOpen(line):
			end := findClosing(lines, i+1, isFenceLine)
			if end < 0 {
				// Unterminated fence: keep the marker literal.
				out = append(out, inline(line))
				i++
				continue
			}
			out = append(out, codeBlock(line, lines[i+1:end]))
			i = end + 1

		case isMathOpen(line):
			end := findClosing(lines, i+1, hasMathDelim)
			if end < 0 {
				out = append(out, inline(line))
				i++
				continue
			}
			out = append(out, strings.Join(lines[i:end+1], "\n"))
			i = end + 1

		case tableLine.MatchString(line):
			j := i + 1
			for j < len(lines) && tableLine.MatchString(lines[j]) {
				j++
			}
			if j-i < 2 {
				out = append(out, inline(line))
			} else {
				out = append(out, table(lines[i:j]))
			}
			i = j

		case bulletLine.MatchString(line):
			j := i + 1
			for j < len(lines) && bulletLine.MatchString(lines[j]) {
				j++
			}
			out = append(out, list(lines[i:j]))
			i = j

		default:
			out = append(out, inline(line))
			i++
		}
	}
	return strings.Join(out, lineBreak)
}

func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// isFenceOpen reports a fence marker that does not also close on the same line.
func isFenceOpen(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") && !strings.Contains(t[3:], "```")
}

func hasMathDelim(line string) bool {
	return strings.Contains(line, "$$")
}

// isMathOpen reports a line starting a $$ block that is not closed on the same line.
func isMathOpen(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "$$") && strings.Count(t, "$$")%2 == 1
}

func findClosing(lines []string, from int, match func(string) bool) int {
	for k := from; k < len(lines); k++ {
		if match(lines[k]) {
			return k
		}
	}
	return -1
}

// codeBlock renders fenced lines. Content is not escaped.
func codeBlock(open string, body []string) string {
	var b strings.Builder
	b.WriteString("<pre><code")
	if info := strings.TrimSpace(strings.TrimSpace(open)[3:]); info != "" {
		if lang := strings.Fields(info)[0]; fenceInfo.MatchString(lang) {
			b.WriteString(` class="language-` + lang + `"`)
		}
	}
	b.WriteString(">")
	b.WriteString(strings.Join(body, lineBreak))
	b.WriteString("</code></pre>")
	return b.String()
}

// table renders a run of pipe lines. The second line is dropped when it is
// a separator row.
func table(rows []string) string {
	header := rows[0]
	body := rows[1:]
	if isSeparatorRow(body[0]) {
		body = body[1:]
	}

	var b strings.Builder
	b.WriteString(`<table border="1"><thead><tr>`)
	for _, cell := range cells(header) {
		b.WriteString("<th>" + cell + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range body {
		b.WriteString("<tr>")
		for _, cell := range cells(row) {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func isSeparatorRow(line string) bool {
	rest := strings.Map(func(r rune) rune {
		switch r {
		case '|', ':', ' ', '\t':
			return -1
		}
		return r
	}, line)
	return rest != "" && strings.Trim(rest, "-") == ""
}

// cells splits a table row and renders the inline markup of each cell.
// Shielding happens before the split so a pipe inside math or code does not
// start a new cell.
func cells(row string) []string {
	var s shield
	held := s.protect(strings.TrimSpace(row))
	held = strings.Trim(held, "|")
	parts := strings.Split(held, "|")
	for i, p := range parts {
		parts[i] = s.restore(emphasize(strings.TrimSpace(p)))
	}
	return parts
}

func list(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		text := bulletLine.ReplaceAllString(item, "")
		b.WriteString("<li>" + inline(text) + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// inline applies span-level rules to a single line.
func inline(line string) string {
	var s shield
	return s.restore(emphasize(s.protect(line)))
}

// emphasize applies triple, bold and italic rules in that order. Triple
// delimiters render bold outermost.
func emphasize(s string) string {
	s = tripleStar.ReplaceAllString(s, "<strong><em>${1}</em></strong>")
	s = tripleUnder.ReplaceAllString(s, "<strong><em>${1}</em></strong>")
	s = boldStar.ReplaceAllString(s, "<strong>${1}</strong>")
	s = boldUnder.ReplaceAllString(s, "<strong>${1}</strong>")
	s = pairLone(s, '*', false, wrapEm)
	s = pairLone(s, '_', false, wrapEm)
	return s
}

func wrapEm(inner string) string {
	return "<em>" + inner + "</em>"
}

// pairLone wraps spans delimited by a single d that is not adjacent to
// another d. The opening delimiter must be lone on both sides; the closing one
// must not be followed by d, and with strict it must not be preceded by d
// either. Spans never cross a newline. Unpaired delimiters stay literal.
func pairLone(s string, d byte, strict bool, wrap func(string) string) string {
	if strings.IndexByte(s, d) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if !isLoneAt(s, i, d) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := findCloser(s, i, d, strict)
		if j < 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		b.WriteString(wrap(s[i+1 : j]))
		i = j + 1
	}
	return b.String()
}

func isLoneAt(s string, i int, d byte) bool {
	if s[i] != d {
		return false
	}
	if i > 0 && s[i-1] == d {
		return false
	}
	return i+1 >= len(s) || s[i+1] != d
}

func findCloser(s string, open int, d byte, strict bool) int {
	for k := open + 2; k < len(s); k++ {
		switch {
		case s[k] == '\n':
			return -1
		case s[k] != d:
			continue
		case k+1 < len(s) && s[k+1] == d:
			continue
		case strict && s[k-1] == d:
			continue
		}
		return k
	}
	return -1
}
