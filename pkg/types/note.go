// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NoteMeta holds the front-matter values shared by every segment of a note.
type NoteMeta struct {
	// Deck is the target deck name. Empty front-matter yields DefaultDeck.
	Deck string `json:"deck" yaml:"deck"`

	// Tags in source order. Order carries no meaning at the store.
	Tags []string `json:"tags" yaml:"tags"`
}

// Segment is one question/answer pair as it appears in the note body.
// Both fields still carry source markup.
type Segment struct {
	Index    int    `json:"index" yaml:"index"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Note is a parsed note file.
type Note struct {
	Path     string    `json:"path" yaml:"path"`
	Meta     NoteMeta  `json:"meta" yaml:"meta"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// Card is the rendered submission unit. Build it once and do not mutate it.
type Card struct {
	Deck     string   `json:"deck" yaml:"deck"`
	NoteType string   `json:"note_type" yaml:"note_type"`
	Front    string   `json:"front" yaml:"front"`
	Back     string   `json:"back" yaml:"back"`
	Tags     []string `json:"tags" yaml:"tags"`

	// Source is the note file the card came from.
	Source string `json:"source" yaml:"source"`
}

// Identity is the key used to submit a card at most once per run.
func (c Card) Identity() string {
	return c.Deck + "\x00" + c.Front
}

// Preview returns the first n runes of the front field for status output.
func (c Card) Preview(n int) string {
	r := []rune(c.Front)
	if len(r) <= n {
		return c.Front
	}
	return string(r[:n]) + "..."
}

// ImageAsset is a binary resource referenced from a note and resolved
// under the asset root.
type ImageAsset struct {
	// Name is the reference value as written in the note.
	Name string `json:"name" yaml:"name"`

	// Path is the resolved file path.
	Path string `json:"path" yaml:"path"`

	// Filename is the base name the asset is stored under.
	Filename string `json:"filename" yaml:"filename"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`
}
