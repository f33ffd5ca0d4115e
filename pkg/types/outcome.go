// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutcomeStatus is the terminal state of one card in a run.
type OutcomeStatus string

const (
	OutcomeAdded   OutcomeStatus = "added"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomePlanned OutcomeStatus = "planned"
)

// Outcome records what happened to a single card.
type Outcome struct {
	Source  string        `json:"source" yaml:"source"`
	Deck    string        `json:"deck" yaml:"deck"`
	Front   string        `json:"front" yaml:"front"`
	Status  OutcomeStatus `json:"status" yaml:"status"`
	Message string        `json:"message,omitempty" yaml:"message,omitempty"`

	// NoteID is the store's id for an added card, zero otherwise.
	NoteID int64 `json:"note_id,omitempty" yaml:"note_id,omitempty"`
}

// RunSummary is the journal's view of one completed run.
type RunSummary struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Files      int       `json:"files" yaml:"files"`
	Added      int       `json:"added" yaml:"added"`
	Failed     int       `json:"failed" yaml:"failed"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Media      int       `json:"media" yaml:"media"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
}
