// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package media resolves embedded image references in card text, uploads
// the referenced files to the store and rewrites the references to <img>
// tags.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/ankisync/pkg/types"
)

var (
	embedRef = regexp.MustCompile(`!\[\[(.+?)\]\]`)
	linkRef  = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)

	// verbatim matches rendered code, which is left untouched.
	verbatim = regexp.MustCompile(`(?s)<pre>.*?</pre>|<code[^>]*>.*?</code>`)
)

var errOutsideRoot = errors.New("reference escapes the asset root")

// Store uploads one base64-encoded file and returns the stored name.
type Store interface {
	StoreMedia(ctx context.Context, filename, data string) (string, error)
}

// Resolver finds image references and resolves them against a fixed asset
// root, independent of where the note lives.
type Resolver struct {
	root  string
	store Store
}

// NewResolver creates a Resolver. With a nil store references are checked
// for existence but neither uploaded nor rewritten.
func NewResolver(root string, store Store) *Resolver {
	return &Resolver{root: root, store: store}
}

// Scope caches outcomes so each distinct reference is loaded and uploaded
// once, however many fields or occurrences mention it.
type Scope struct {
	r        *Resolver
	stored   map[string]string
	failed   map[string]bool
	uploaded []types.ImageAsset
}

// Begin opens a new resolution scope, typically one per note file.
func (r *Resolver) Begin() *Scope {
	return &Scope{r: r, stored: map[string]string{}, failed: map[string]bool{}}
}

// Uploaded returns the assets stored through this scope, in upload order.
func (s *Scope) Uploaded() []types.ImageAsset {
	return s.uploaded
}

// Resolve rewrites every resolvable reference in text. noteDir identifies
// the originating note in diagnostics. A reference that cannot be resolved
// is left as written and reported once per scope.
func (s *Scope) Resolve(ctx context.Context, text, noteDir string) (string, types.Diagnostics) {
	var diags types.Diagnostics
	for _, name := range References(text) {
		if stored, ok := s.stored[name]; ok {
			text = rewrite(text, name, stored)
			continue
		}
		if s.failed[name] {
			continue
		}
		if isRemote(name) {
			s.stored[name] = name
			text = rewrite(text, name, name)
			continue
		}

		asset, data, err := s.r.load(name)
		if err != nil {
			s.failed[name] = true
			diags = append(diags, types.Warn(types.StageMedia, noteDir, name, err))
			continue
		}
		if s.r.store == nil {
			continue
		}

		stored, err := s.r.store.StoreMedia(ctx, asset.Filename, base64.StdEncoding.EncodeToString(data))
		if err != nil {
			s.failed[name] = true
			diags = append(diags, types.Warn(types.StageMedia, noteDir, name,
				fmt.Errorf("storing %s: %w", asset.Filename, err)))
			continue
		}
		if stored == "" {
			stored = asset.Filename
		}
		s.stored[name] = stored
		s.uploaded = append(s.uploaded, asset)
		text = rewrite(text, name, stored)
	}
	return text, diags
}

// References returns the distinct image names referenced in text, in order
// of first appearance across both syntaxes. References inside <pre> and
// <code> elements are ignored.
func References(text string) []string {
	type hit struct {
		pos  int
		name string
	}
	masked := verbatim.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	var hits []hit
	for _, re := range []*regexp.Regexp{embedRef, linkRef} {
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			hits = append(hits, hit{pos: m[0], name: text[m[2]:m[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	var names []string
	for _, h := range hits {
		if !seen[h.name] {
			seen[h.name] = true
			names = append(names, h.name)
		}
	}
	return names
}

// load reads the file behind a reference. An Obsidian size alias
// ("pic.png|300") and URL escaping are ignored for lookup.
func (r *Resolver) load(name string) (types.ImageAsset, []byte, error) {
	lookup, _, _ := strings.Cut(name, "|")
	lookup = strings.TrimSpace(lookup)
	if unescaped, err := url.PathUnescape(lookup); err == nil {
		lookup = unescaped
	}

	root := filepath.Clean(r.root)
	path := filepath.Join(root, filepath.FromSlash(lookup))
	if rel, err := filepath.Rel(root, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return types.ImageAsset{}, nil, fmt.Errorf("%s: %w", lookup, errOutsideRoot)
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.ImageAsset{}, nil, fmt.Errorf("image not found: %w", err)
	}
	if info.IsDir() {
		return types.ImageAsset{}, nil, fmt.Errorf("image %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ImageAsset{}, nil, fmt.Errorf("reading image: %w", err)
	}

	return types.ImageAsset{
		Name:     name,
		Path:     path,
		Filename: filepath.Base(lookup),
		Size:     info.Size(),
	}, data, nil
}

func isRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// rewrite replaces every occurrence of name outside code, in either
// syntax, with an <img> tag for src.
func rewrite(text, name, src string) string {
	tag := `<img src="` + html.EscapeString(src) + `">`
	quoted := regexp.QuoteMeta(name)
	embed := regexp.MustCompile(`!\[\[` + quoted + `\]\]`)
	link := regexp.MustCompile(`!\[[^\]]*\]\(` + quoted + `\)`)
	replace := func(s string) string {
		s = embed.ReplaceAllLiteralString(s, tag)
		return link.ReplaceAllLiteralString(s, tag)
	}

	var b strings.Builder
	last := 0
	for _, r := range verbatim.FindAllStringIndex(text, -1) {
		b.WriteString(replace(text[last:r[0]]))
		b.WriteString(text[r[0]:r[1]])
		last = r[1]
	}
	b.WriteString(replace(text[last:]))
	return b.String()
}
