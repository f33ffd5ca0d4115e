// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the domain and configuration types shared across
// the ankisync stages.
package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults for the AnkiConnect store and the notes layout.
const (
	DefaultEndpoint    = "http://127.0.0.1:8765"
	DefaultAPIVersion  = 6
	DefaultNoteType    = "Basic"
	DefaultDeck        = "Default"
	DefaultAssetRoot   = "assets"
	DefaultExtension   = ".md"
	DefaultStateDir    = ".ankisync"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultListName    = "Список вопросов.txt"
	DefaultQuestionDir = "Вопросы"
)

// DefaultQuestionMarkers and DefaultAnswerMarkers are the section headings
// recognised in note bodies.
var (
	DefaultQuestionMarkers = []string{"## Question", "## Вопрос"}
	DefaultAnswerMarkers   = []string{"## Answer", "## Ответ"}
)

// StoreConfig holds settings for talking to the AnkiConnect endpoint.
type StoreConfig struct {
	// Endpoint is the AnkiConnect URL (e.g. "http://127.0.0.1:8765").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Version is the protocol version sent with every request.
	Version int `json:"version" yaml:"version" mapstructure:"version"`

	// APIKey is the optional AnkiConnect key, sent only when non-empty.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on HTTP 429/503 for idempotent actions.
	// Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ExtractConfig holds the markers the note extractor looks for.
type ExtractConfig struct {
	DefaultDeck     string   `json:"default_deck" yaml:"default_deck" mapstructure:"default_deck"`
	QuestionMarkers []string `json:"question_markers" yaml:"question_markers" mapstructure:"question_markers"`
	AnswerMarkers   []string `json:"answer_markers" yaml:"answer_markers" mapstructure:"answer_markers"`
}

// Config groups everything a sync run needs. It is built once by the CLI
// and passed into each component at construction.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Extract ExtractConfig `json:"extract" yaml:"extract" mapstructure:"extract"`

	// NoteType is the Anki note type used for every card.
	NoteType string `json:"note_type" yaml:"note_type" mapstructure:"note_type"`

	// NotesDir is the root of the note tree.
	NotesDir string `json:"notes_dir" yaml:"notes_dir" mapstructure:"notes_dir"`

	// AssetRoot is the directory image references resolve against.
	AssetRoot string `json:"asset_root" yaml:"asset_root" mapstructure:"asset_root"`

	// Extension selects note files during the tree walk.
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`

	// StateDir holds the sync journal.
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`

	// Sanitize runs card HTML through an allow-list policy before submission.
	Sanitize bool `json:"sanitize" yaml:"sanitize" mapstructure:"sanitize"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Endpoint:   DefaultEndpoint,
			Version:    DefaultAPIVersion,
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Extract: ExtractConfig{
			DefaultDeck:     DefaultDeck,
			QuestionMarkers: append([]string(nil), DefaultQuestionMarkers...),
			AnswerMarkers:   append([]string(nil), DefaultAnswerMarkers...),
		},
		NoteType:  DefaultNoteType,
		NotesDir:  ".",
		AssetRoot: DefaultAssetRoot,
		Extension: DefaultExtension,
		StateDir:  DefaultStateDir,
	}
}

// Validate reports the first set of invalid fields.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Store,
		validation.Field(&c.Store.Endpoint, validation.Required),
		validation.Field(&c.Store.Version, validation.Required, validation.Min(1)),
		validation.Field(&c.Store.MaxRetries, validation.Min(0)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Extract,
		validation.Field(&c.Extract.DefaultDeck, validation.Required),
		validation.Field(&c.Extract.QuestionMarkers, validation.Required),
		validation.Field(&c.Extract.AnswerMarkers, validation.Required),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.NoteType, validation.Required),
		validation.Field(&c.NotesDir, validation.Required),
		validation.Field(&c.AssetRoot, validation.Required),
		validation.Field(&c.Extension, validation.Required),
	)
}
