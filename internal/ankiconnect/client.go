// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ankiconnect talks to the AnkiConnect add-on. Every call is a
// single independent request; the client keeps no session state beyond the
// endpoint it was built with.
package ankiconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/ankisync/pkg/types"
)

// Action names understood by AnkiConnect.
const (
	ActionCreateDeck     = "createDeck"
	ActionAddNote        = "addNote"
	ActionStoreMediaFile = "storeMediaFile"
	ActionVersion        = "version"
)

// Field names of the note type cards are created with.
const (
	FieldFront = "Front"
	FieldBack  = "Back"
)

var (
	// ErrDuplicate matches a StoreError rejecting a note as a duplicate.
	ErrDuplicate = errors.New("duplicate note")

	// ErrDeckExists matches a StoreError reporting the deck already exists.
	ErrDeckExists = errors.New("deck already exists")
)

// StoreError is an error reported by AnkiConnect in the response envelope.
type StoreError struct {
	Action  string
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// Is lets errors.Is match the sentinel errors by message content.
func (e *StoreError) Is(target error) bool {
	msg := strings.ToLower(e.Message)
	switch target {
	case ErrDuplicate:
		return strings.Contains(msg, "duplicate")
	case ErrDeckExists:
		return strings.Contains(msg, "exists")
	}
	return false
}

// Client issues deck, note and media requests through a Transport.
type Client struct {
	transport Transport
	version   int
	key       string
	noteType  string
}

// New creates a Client. noteType is used for cards that carry none.
func New(t Transport, cfg types.StoreConfig, noteType string) *Client {
	version := cfg.Version
	if version <= 0 {
		version = types.DefaultAPIVersion
	}
	if noteType == "" {
		noteType = types.DefaultNoteType
	}
	return &Client{
		transport: t,
		version:   version,
		key:       cfg.APIKey,
		noteType:  noteType,
	}
}

func (c *Client) call(ctx context.Context, action string, params, result any) error {
	resp, err := c.transport.Invoke(ctx, Request{
		Action:  action,
		Version: c.version,
		Key:     c.key,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return &StoreError{Action: action, Message: *resp.Error}
	}
	if result == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", action, err)
	}
	return nil
}

// EnsureDeck creates the named deck. A deck that already exists is not an
// error.
func (c *Client) EnsureDeck(ctx context.Context, name string) error {
	err := c.call(ctx, ActionCreateDeck, map[string]string{"deck": name}, nil)
	if errors.Is(err, ErrDeckExists) {
		return nil
	}
	return err
}

type noteParams struct {
	Note note `json:"note"`
}

type note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}

// SubmitCard creates one note from card and returns its id. Failures are
// returned as is; the caller decides whether to continue.
func (c *Client) SubmitCard(ctx context.Context, card types.Card) (int64, error) {
	modelName := card.NoteType
	if modelName == "" {
		modelName = c.noteType
	}
	tags := card.Tags
	if tags == nil {
		tags = []string{}
	}

	var id int64
	err := c.call(ctx, ActionAddNote, noteParams{Note: note{
		DeckName:  card.Deck,
		ModelName: modelName,
		Fields: map[string]string{
			FieldFront: card.Front,
			FieldBack:  card.Back,
		},
		Tags: tags,
	}}, &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// StoreMedia uploads base64 data under filename. An existing file with the
// same name is overwritten by the store.
func (c *Client) StoreMedia(ctx context.Context, filename, data string) (string, error) {
	stored := filename
	err := c.call(ctx, ActionStoreMediaFile, map[string]string{
		"filename": filename,
		"data":     data,
	}, &stored)
	if err != nil {
		return "", err
	}
	return stored, nil
}

// Version returns the protocol version the add-on reports.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.call(ctx, ActionVersion, nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}
