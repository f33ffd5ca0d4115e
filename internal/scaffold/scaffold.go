// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scaffold generates per-question note files from flat question
// lists and a note template. Generated notes are chained with circular
// previous/next links.
package scaffold

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Template placeholders.
const (
	disciplineField = "Discipline:"
	directionField  = "Direction:"
	prevPlaceholder = "Название файла предыдущего вопроса"
	nextPlaceholder = "Название следующего вопроса"
	questionHeader  = "## Вопрос"
)

var disciplinePrefixes = []string{"Дисциплина - ", "Discipline - "}

// Question is one entry of a question list.
type Question struct {
	Discipline string
	Text       string
}

// ParseQuestionList reads a question list. A discipline line sets the
// discipline for the questions that follow; a line whose first token is a
// number followed by a dot starts a question. Other lines are ignored.
func ParseQuestionList(r io.Reader) ([]Question, error) {
	var (
		questions  []Question
		discipline string
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if d, ok := disciplineOf(line); ok {
			discipline = d
			continue
		}
		if text, ok := questionText(line); ok {
			questions = append(questions, Question{Discipline: discipline, Text: text})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading question list: %w", err)
	}
	return questions, nil
}

func disciplineOf(line string) (string, bool) {
	for _, p := range disciplinePrefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func questionText(line string) (string, bool) {
	first := strings.Fields(line)[0]
	r := []rune(first)
	if !unicode.IsDigit(r[0]) || !strings.Contains(first, ".") {
		return "", false
	}
	_, text, _ := strings.Cut(line, ".")
	return strings.TrimSpace(text), true
}

// FileName returns the note name for the 1-based position n.
func FileName(n int) string {
	return fmt.Sprintf("%03d.md", n)
}

// Render fills template for question i of total.
func Render(template string, q Question, i, total int, direction string) string {
	prev := FileName((i-1+total)%total + 1)
	next := FileName((i+1)%total + 1)

	out := template
	out = strings.ReplaceAll(out, disciplineField, disciplineField+" "+q.Discipline)
	out = strings.ReplaceAll(out, directionField, directionField+"\n  - \"[["+direction+"]]\"")
	out = strings.ReplaceAll(out, prevPlaceholder, prev)
	out = strings.ReplaceAll(out, nextPlaceholder, next)
	out = strings.ReplaceAll(out, questionHeader+"\n", questionHeader+"\n\n"+q.Text+"\n")
	return out
}

// Generate writes one note per question into outDir as 001.md, 002.md, ...
// Existing files are overwritten. It returns the written paths.
func Generate(questions []Question, template, outDir, direction string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(questions))
	for i, q := range questions {
		path := filepath.Join(outDir, FileName(i+1))
		content := Render(template, q, i, len(questions), direction)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ListDir is a directory holding a question list.
type ListDir struct {
	// Dir is the directory containing the list; its base name is the
	// direction.
	Dir string

	// ListPath is the question list file.
	ListPath string

	// OutDir receives the generated notes.
	OutDir string
}

// Direction returns the direction name used in generated links.
func (l ListDir) Direction() string {
	return filepath.Base(l.Dir)
}

// FindQuestionLists walks base for files named listName. Output for each
// goes to the questionDir sibling of the list.
func FindQuestionLists(base, listName, questionDir string) ([]ListDir, error) {
	var found []ListDir
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != listName {
			return nil
		}
		dir := filepath.Dir(path)
		found = append(found, ListDir{
			Dir:      dir,
			ListPath: path,
			OutDir:   filepath.Join(dir, questionDir),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", base, err)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Dir < found[j].Dir })
	return found, nil
}

// Result summarises a scaffold run.
type Result struct {
	Lists     int
	Generated int
	Failed    int
}

// HasFailures reports whether any list failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Process finds every question list under base and generates notes for it
// from the template at templatePath, printing one status line per list.
func Process(base, templatePath, listName, questionDir string, w io.Writer) (Result, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading template: %w", err)
	}
	template := strings.ReplaceAll(string(data), "\r\n", "\n")

	lists, err := FindQuestionLists(base, listName, questionDir)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, l := range lists {
		res.Lists++
		questions, err := parseFile(l.ListPath)
		if err != nil {
			res.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", l.ListPath, err)
			continue
		}
		paths, err := Generate(questions, template, l.OutDir, l.Direction())
		res.Generated += len(paths)
		if err != nil {
			res.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", l.Direction(), err)
			continue
		}
		fmt.Fprintf(w, "generated: %d questions for %s\n", len(paths), l.Direction())
	}
	fmt.Fprintf(w, "\nScaffold summary: %d lists, %d notes, %d failed\n", res.Lists, res.Generated, res.Failed)
	return res, nil
}

func parseFile(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening question list: %w", err)
	}
	defer f.Close()
	return ParseQuestionList(f)
}

// AppendLink appends line to every regular file in dir that does not
// already contain it. It returns the number of files changed.
func AppendLink(dir, line string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading directory: %w", err)
	}

	changed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", path, err)
		}
		if strings.Contains(string(data), line) {
			continue
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return changed, fmt.Errorf("opening %s: %w", path, err)
		}
		_, werr := io.WriteString(f, line+"\n")
		cerr := f.Close()
		if werr != nil {
			return changed, fmt.Errorf("appending to %s: %w", path, werr)
		}
		if cerr != nil {
			return changed, fmt.Errorf("closing %s: %w", path, cerr)
		}
		changed++
	}
	return changed, nil
}
